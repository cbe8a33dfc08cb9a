package timecode

import "testing"

func TestDecodeStartTime(t *testing.T) {
	// 1 January 2026 00:00:00 UTC: MJD 61041.
	b := []byte{0xEE, 0x71, 0x00, 0x00, 0x00}
	got, err := DecodeStartTime(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := int64(61041-40587) * 86400
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestDecodeStartTimeWithTime(t *testing.T) {
	b := []byte{0xEE, 0x71, 0x12, 0x34, 0x56} // 12:34:56 BCD
	got, err := DecodeStartTime(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := int64(61041-40587)*86400 + 12*3600 + 34*60 + 56
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestDecodeStartTimeKnownBroadcastDate(t *testing.T) {
	// MJD 55122 is 2009-10-24; 14:30:00 BCD.
	b := []byte{0xD7, 0x52, 0x14, 0x30, 0x00}
	got, err := DecodeStartTime(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1256394600 {
		t.Errorf("got %d, want 1256394600", got)
	}
}

func TestDecodeStartTimeTooShort(t *testing.T) {
	if _, err := DecodeStartTime([]byte{0x01, 0x02}); err != ErrTooShort {
		t.Errorf("got %v, want ErrTooShort", err)
	}
}

func TestDecodeDuration(t *testing.T) {
	b := []byte{0x01, 0x30, 0x00} // 1h30m00s
	got, err := DecodeDuration(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := int64(5400); got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestDecodeDurationTooShort(t *testing.T) {
	if _, err := DecodeDuration([]byte{0x01}); err != ErrTooShort {
		t.Errorf("got %v, want ErrTooShort", err)
	}
}

func TestDecodeDurationBCDRoundTrip(t *testing.T) {
	bcd := func(v int) byte { return byte(v/10<<4 | v%10) }
	for h := 0; h < 24; h += 5 {
		for m := 0; m < 60; m += 7 {
			for s := 0; s < 60; s += 11 {
				got, err := DecodeDuration([]byte{bcd(h), bcd(m), bcd(s)})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if want := int64(h*3600 + m*60 + s); got != want {
					t.Fatalf("DecodeDuration(%02d:%02d:%02d) = %d, want %d", h, m, s, got, want)
				}
			}
		}
	}
}

func TestValidEvent(t *testing.T) {
	cases := []struct {
		start, duration int64
		want            bool
	}{
		{0, 0, true},
		{100, 86400, true},
		{-1, 0, false},
		{0, 86401, false},
		{0, -1, false},
	}
	for _, c := range cases {
		if got := ValidEvent(c.start, c.duration); got != c.want {
			t.Errorf("ValidEvent(%d, %d) = %v, want %v", c.start, c.duration, got, c.want)
		}
	}
}
