package dvbtext

import "testing"

func TestDecodeDefaultTable(t *testing.T) {
	// Bytes >= 0x20 with no control prefix decode via the default table.
	got := Decode([]byte("Hello"))
	if got != "Hello" {
		t.Errorf("got %q, want %q", got, "Hello")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := Decode(nil); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestDecodeISO8859_5Prefix(t *testing.T) {
	// 0x01 selects ISO 8859-5; 0x42 lies in that table's ASCII half ('B').
	got := Decode([]byte{0x01, 0x42})
	if got == "" {
		t.Errorf("expected non-empty decode")
	}
}

func TestDecodeISOSelectedPrefix(t *testing.T) {
	// 0x10 0x00 0x01 selects ISO 8859-1.
	got := Decode([]byte{0x10, 0x00, 0x01, 'A'})
	if got != "A" {
		t.Errorf("got %q, want %q", got, "A")
	}
}

func TestDecodeUTF16BE(t *testing.T) {
	// 0x11 selects Basic Multilingual Plane UTF-16BE; U+0041 'A'.
	got := Decode([]byte{0x11, 0x00, 0x41})
	if got != "A" {
		t.Errorf("got %q, want %q", got, "A")
	}
}

func TestDecodeUTF8(t *testing.T) {
	got := Decode([]byte{0x15, 'h', 'i'})
	if got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestDecodeUTF16BEStripsEmphasisMarks(t *testing.T) {
	// Emphasis on (0x86) / off (0x87) interleaved with "ABC".
	b := []byte{0x11, 0x00, 0x41, 0x00, 0x86, 0x00, 0x42, 0x00, 0x87, 0x00, 0x43}
	if got := Decode(b); got != "ABC" {
		t.Errorf("got %q, want %q", got, "ABC")
	}
}

func TestDecodeUTF8MultiByte(t *testing.T) {
	b := append([]byte{0x15}, []byte("テスト")...)
	if got := Decode(b); got != "テスト" {
		t.Errorf("got %q, want %q", got, "テスト")
	}
}

func TestDecodeStripsControlCharacters(t *testing.T) {
	// U+0086 (start of selected area) encoded as UTF-8, stripped after decode.
	b := append([]byte{0x15}, []byte("a\u0086b")...)
	got := Decode(b)
	if got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
}

func TestDecodeKeepsNewline(t *testing.T) {
	b := append([]byte{0x15}, []byte("a\nb")...)
	got := Decode(b)
	if got != "a\nb" {
		t.Errorf("got %q, want %q", got, "a\nb")
	}
}

func TestDecodeNeverFails(t *testing.T) {
	// Malformed/truncated prefixed inputs must decode to something, never panic.
	inputs := [][]byte{
		{0x10},
		{0x10, 0x00},
		{0x01},
		{0x11},
	}
	for _, in := range inputs {
		_ = Decode(in)
	}
}
