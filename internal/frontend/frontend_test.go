package frontend

import (
	"testing"
	"unsafe"
)

// These sanity-check the kernel ABI struct layouts without touching a real
// frontend device: a wrong field order or an accidental alignment gap would
// silently corrupt every FE_SET_PROPERTY/FE_READ_STATUS call.

func TestDtvPropertySize(t *testing.T) {
	if got := unsafe.Sizeof(dtvProperty{}); got != 76 {
		t.Errorf("sizeof(dtvProperty) = %d, want 76", got)
	}
}

func TestDtvPropertyCmdAtOffsetZero(t *testing.T) {
	var p dtvProperty
	if off := unsafe.Offsetof(p.Cmd); off != 0 {
		t.Errorf("dtvProperty.Cmd offset = %d, want 0", off)
	}
	if off := unsafe.Offsetof(p.Data); off != 16 {
		t.Errorf("dtvProperty.Data offset = %d, want 16", off)
	}
}

func TestDtvPropertiesHasNoUnexpectedPadding(t *testing.T) {
	var b dtvProperties
	if off := unsafe.Offsetof(b.Num); off != 0 {
		t.Errorf("dtvProperties.Num offset = %d, want 0", off)
	}
	if off := unsafe.Offsetof(b.Props); off%unsafe.Alignof(b.Props) != 0 {
		t.Errorf("dtvProperties.Props offset %d is not pointer-aligned", off)
	}
}
