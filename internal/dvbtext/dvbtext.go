// Package dvbtext decodes DVB-encoded descriptor strings (EN 300 468 Annex A)
// to Unicode. It never fails: invalid or unrecognized input decodes to the
// empty string or to the replacement character, matching how broadcasters'
// feeds are routinely a little wrong.
package dvbtext

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// isoSingleByte maps the 0x01-0x05 single-byte prefix to its ISO 8859 table.
// EN 300 468 calls these ISO 8859-5 through ISO 8859-9; a prefix without a
// direct charmap type falls back to Latin-1, best-effort.
var isoSingleByte = map[byte]encoding.Encoding{
	0x01: charmap.ISO8859_5,
	0x02: charmap.ISO8859_6,
	0x03: charmap.ISO8859_7,
	0x04: charmap.ISO8859_8,
	0x05: charmap.ISO8859_9,
}

// isoSelected maps the second byte following a 0x10 prefix (the ISO 8859-N
// selector) to its charmap encoding. 0x10 0x00 0x01 selects ISO 8859-1, and
// so on through ISO 8859-15 (selector 0x0F); selectors with no charmap here
// (0x0B, 0x0C) and unknown selectors fall back to Latin-1.
var isoSelected = map[byte]encoding.Encoding{
	0x01: charmap.ISO8859_1,
	0x02: charmap.ISO8859_2,
	0x03: charmap.ISO8859_3,
	0x04: charmap.ISO8859_4,
	0x05: charmap.ISO8859_5,
	0x06: charmap.ISO8859_6,
	0x07: charmap.ISO8859_7,
	0x08: charmap.ISO8859_8,
	0x09: charmap.ISO8859_9,
	0x0A: charmap.ISO8859_10,
	0x0D: charmap.ISO8859_13,
	0x0E: charmap.ISO8859_14,
	0x0F: charmap.ISO8859_15,
}

// Decode decodes a DVB descriptor byte string per EN 300 468 Annex A and
// strips embedded control characters from the result.
func Decode(d []byte) string {
	if len(d) == 0 {
		return ""
	}
	var raw string
	switch {
	case d[0] >= 0x01 && d[0] <= 0x05:
		enc, ok := isoSingleByte[d[0]]
		if !ok {
			enc = charmap.ISO8859_1
		}
		raw = decodeCharmap(enc, d[1:])
	case d[0] == 0x10:
		if len(d) < 4 {
			return ""
		}
		enc, ok := isoSelected[d[2]]
		if !ok {
			enc = charmap.ISO8859_1
		}
		raw = decodeCharmap(enc, d[3:])
	case d[0] == 0x11:
		raw = decodeUTF16BE(d[1:])
	case d[0] == 0x14:
		raw = decodeUTF16BE(d[1:])
	case d[0] == 0x15:
		raw = decodeUTF8Lossy(d[1:])
	case d[0] >= 0x20 && d[0] <= 0xFF:
		// Default table (ISO 6937), treated as best-effort UTF-8.
		raw = decodeUTF8Lossy(d)
	default:
		return ""
	}
	return stripControls(raw)
}

func decodeCharmap(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return decodeUTF8Lossy(b)
	}
	return string(out)
}

// decodeUTF16BE decodes big-endian UTF-16 pairs. A payload under 2 bytes
// yields an empty string.
func decodeUTF16BE(b []byte) string {
	if len(b) < 2 {
		return ""
	}
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}

func decodeUTF8Lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// stripControls removes the code points that must not survive into decoded
// DVB text: C0 controls except newline, DEL, C1 controls (DVB emphasis
// on/off, line break, ...), and the broadcaster-specific PUA remapping of C1
// controls some feeds use instead of the real C1 range.
func stripControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r <= 0x1F, r == 0x7F:
			continue
		case r >= 0x80 && r <= 0x9F:
			continue
		case r >= 0xE080 && r <= 0xE09F:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
