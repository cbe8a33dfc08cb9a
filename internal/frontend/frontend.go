// Package frontend drives a DVB-T frontend device through the DVB v5
// property-set API: clearing prior tuning state, committing a Channel's
// tuning parameters as a property batch, and polling for lock.
package frontend

import (
	"context"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/time/rate"

	"github.com/dvbgrab/epgrabber/internal/dvbioctl"
	"github.com/dvbgrab/epgrabber/internal/dvbt"
	"github.com/dvbgrab/epgrabber/internal/zap"
)

// DTV property command IDs (linux/dvb/frontend.h).
const (
	dtvTune            = 1
	dtvClear           = 2
	dtvFrequency       = 3
	dtvModulation      = 4
	dtvBandwidthHz     = 5
	dtvInversion       = 6
	dtvDeliverySystem  = 17
	dtvCodeRateHP      = 36
	dtvCodeRateLP      = 37
	dtvGuardInterval   = 38
	dtvTransmissionMod = 39
	dtvHierarchy       = 40

	sysDVBT = 3

	feHasLock = 0x10

	feIOCType     = 'o'
	feSetProperty = 82
	feReadStatus  = 69

	lockPollInterval = 100 * time.Millisecond
	lockPollAttempts = 100
)

// dtvProperty is the kernel's struct dtv_property, packed with no compiler
// padding: cmd, 3 reserved ints, a 56-byte union (only the leading 4-byte
// "data" field is ever populated here) and a result code. The field
// sequence below lands every field on a natural 4-byte boundary already,
// so Go's ordinary struct layout matches the C packed layout without any
// explicit alignment directives.
type dtvProperty struct {
	Cmd      uint32
	Reserved [3]int32
	Data     uint32
	_padding [52]byte
	Result   int32
}

// dtvProperties is the kernel's struct dtv_properties batch header.
type dtvProperties struct {
	Num   uint32
	_pad  uint32
	Props unsafe.Pointer
}

// ErrNoLock is returned when tuning completes without FE_HAS_LOCK within
// the poll budget.
type ErrNoLock struct {
	Attempts int
}

func (e *ErrNoLock) Error() string {
	return fmt.Sprintf("frontend: no lock after %d attempts", e.Attempts)
}

// Frontend owns one open frontend device file descriptor.
type Frontend struct {
	f *os.File
}

// Open opens the frontend device for the given adapter/frontend index.
func Open(adapter, frontendIndex int) (*Frontend, error) {
	path := fmt.Sprintf("/dev/dvb/adapter%d/frontend%d", adapter, frontendIndex)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("frontend: open %s: %w", path, err)
	}
	return &Frontend{f: f}, nil
}

// Close releases the frontend file handle.
func (fe *Frontend) Close() error {
	return fe.f.Close()
}

func (fe *Frontend) setProperties(props []dtvProperty) error {
	batch := dtvProperties{
		Num:   uint32(len(props)),
		Props: unsafe.Pointer(&props[0]),
	}
	req := dvbioctl.IOW(feIOCType, feSetProperty, unsafe.Sizeof(batch))
	if err := dvbioctl.Do(fe.f.Fd(), req, unsafe.Pointer(&batch)); err != nil {
		return fmt.Errorf("frontend: FE_SET_PROPERTY: %w", err)
	}
	return nil
}

func (fe *Frontend) readStatus() (uint32, error) {
	var status uint32
	req := dvbioctl.IOR(feIOCType, feReadStatus, unsafe.Sizeof(status))
	if err := dvbioctl.Do(fe.f.Fd(), req, unsafe.Pointer(&status)); err != nil {
		return 0, fmt.Errorf("frontend: FE_READ_STATUS: %w", err)
	}
	return status, nil
}

// HasLock reports the FE_HAS_LOCK status bit with a single one-shot status
// read, no polling.
func (fe *Frontend) HasLock() (bool, error) {
	status, err := fe.readStatus()
	if err != nil {
		return false, err
	}
	return status&feHasLock != 0, nil
}

// Tune clears prior tuning state, commits ch's parameters as a DVB-T
// property batch in the kernel's expected order, and polls FE_READ_STATUS
// at 100ms intervals (up to 100 attempts, ~10s) for FE_HAS_LOCK.
func (fe *Frontend) Tune(ctx context.Context, ch dvbt.Channel) error {
	if err := fe.setProperties([]dtvProperty{{Cmd: dtvClear}}); err != nil {
		return err
	}

	modulation, err := zap.EncodeModulation(ch.Modulation)
	if err != nil {
		return err
	}
	bandwidth, err := zap.EncodeBandwidth(ch.Bandwidth)
	if err != nil {
		return err
	}
	codeRateHP, err := zap.EncodeFEC(ch.FECHP)
	if err != nil {
		return err
	}
	codeRateLP, err := zap.EncodeFEC(ch.FECLP)
	if err != nil {
		return err
	}
	inversion, err := zap.EncodeInversion(ch.Inversion)
	if err != nil {
		return err
	}
	transmission, err := zap.EncodeTransmissionMode(ch.TransmissionMode)
	if err != nil {
		return err
	}
	guard, err := zap.EncodeGuardInterval(ch.GuardInterval)
	if err != nil {
		return err
	}
	hierarchy, err := zap.EncodeHierarchy(ch.Hierarchy)
	if err != nil {
		return err
	}

	batch := []dtvProperty{
		{Cmd: dtvDeliverySystem, Data: sysDVBT},
		{Cmd: dtvFrequency, Data: uint32(ch.Frequency)},
		{Cmd: dtvBandwidthHz, Data: bandwidth},
		{Cmd: dtvModulation, Data: modulation},
		{Cmd: dtvCodeRateHP, Data: codeRateHP},
		{Cmd: dtvCodeRateLP, Data: codeRateLP},
		{Cmd: dtvInversion, Data: inversion},
		{Cmd: dtvTransmissionMod, Data: transmission},
		{Cmd: dtvGuardInterval, Data: guard},
		{Cmd: dtvHierarchy, Data: hierarchy},
		{Cmd: dtvTune},
	}
	if err := fe.setProperties(batch); err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Every(lockPollInterval), 1)
	for attempt := 0; attempt < lockPollAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		status, err := fe.readStatus()
		if err != nil {
			return err
		}
		if status&feHasLock != 0 {
			return nil
		}
	}
	return &ErrNoLock{Attempts: lockPollAttempts}
}
