// Package psi parses the Program Association, Program Map, and Service
// Description Tables out of raw section bytes (ISO 13818-1 §2.4.4 and
// EN 300 468 §5.2.3 layouts).
package psi

import (
	"errors"
	"fmt"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
)

// Table IDs this package recognizes.
const (
	TableIDPAT = 0x00
	TableIDPMT = 0x02
	TableIDSDT = 0x42
)

// ErrSectionTooShort is returned when a section is too short to contain its
// fixed header.
var ErrSectionTooShort = errors.New("psi: section too short")

// ErrNoServices is returned when a PAT carries no service rows at all.
var ErrNoServices = errors.New("psi: PAT contains no services")

// ParsePAT parses the service_id/PMT_pid rows out of one or more reassembled
// PAT sections, skipping the network PID row (program_number == 0). A PAT
// with no service rows across all its sections is an error.
func ParsePAT(sections [][]byte) ([]dvbt.PatEntry, error) {
	var entries []dvbt.PatEntry
	for _, sec := range sections {
		if len(sec) < 12 {
			return nil, ErrSectionTooShort
		}
		sectionLength := int(sec[1]&0x0F)<<8 | int(sec[2])
		// section_length counts bytes after itself; the program loop runs
		// from byte 8 up to (but not including) the trailing 4-byte CRC.
		end := 3 + sectionLength - 4
		if end > len(sec) {
			end = len(sec)
		}
		for off := 8; off+4 <= end; off += 4 {
			programNumber := uint16(sec[off])<<8 | uint16(sec[off+1])
			pid := uint16(sec[off+2]&0x1F)<<8 | uint16(sec[off+3])
			if programNumber == 0 {
				continue // network_PID row, not a service
			}
			entries = append(entries, dvbt.PatEntry{ServiceID: programNumber, PMTPID: pid})
		}
	}
	if len(entries) == 0 {
		return nil, ErrNoServices
	}
	return entries, nil
}

// ParsePMT scans a single PMT section's elementary stream loop for the
// first video (MPEG-1/2/4, H.264, H.265) and audio (MPEG-1/2, AAC, HE-AAC)
// elementary PIDs.
func ParsePMT(sec []byte) (dvbt.PmtInfo, error) {
	var info dvbt.PmtInfo
	if len(sec) < 12 {
		return info, ErrSectionTooShort
	}
	sectionLength := int(sec[1]&0x0F)<<8 | int(sec[2])
	end := 3 + sectionLength - 4
	if end > len(sec) {
		end = len(sec)
	}
	programInfoLength := int(sec[10]&0x0F)<<8 | int(sec[11])
	off := 12 + programInfoLength
	for off+5 <= end {
		streamType := sec[off]
		pid := uint16(sec[off+1]&0x1F)<<8 | uint16(sec[off+2])
		esInfoLength := int(sec[off+3]&0x0F)<<8 | int(sec[off+4])
		switch streamType {
		case 0x01, 0x02, 0x10, 0x1B, 0x24:
			if info.VideoPID == 0 {
				info.VideoPID = pid
			}
		case 0x03, 0x04, 0x0F, 0x11:
			if info.AudioPID == 0 {
				info.AudioPID = pid
			}
		}
		off += 5 + esInfoLength
	}
	return info, nil
}

// ParseSDT extracts service_id -> name from one or more reassembled SDT
// sections using decode to turn service-name descriptor bytes into text.
// It never fails: malformed sections are skipped and services without a
// service_descriptor are simply absent from the result.
func ParseSDT(sections [][]byte, decode func([]byte) string) map[uint16]string {
	names := map[uint16]string{}
	for _, sec := range sections {
		if len(sec) < 11 {
			continue
		}
		sectionLength := int(sec[1]&0x0F)<<8 | int(sec[2])
		end := 3 + sectionLength - 4
		if end > len(sec) {
			end = len(sec)
		}
		off := 11
		for off+5 <= end {
			serviceID := uint16(sec[off])<<8 | uint16(sec[off+1])
			loopLength := int(sec[off+3]&0x0F)<<8 | int(sec[off+4])
			descOff := off + 5
			descEnd := descOff + loopLength
			if descEnd > end {
				descEnd = end
			}
			if name, ok := scanServiceNameDescriptor(sec[descOff:descEnd], decode); ok {
				names[serviceID] = name
			}
			off = descEnd
		}
	}
	return names
}

// scanServiceNameDescriptor walks a service's descriptor loop for a
// service_descriptor (tag 0x48) and decodes its service-name field (the
// second of its two length-prefixed strings).
func scanServiceNameDescriptor(b []byte, decode func([]byte) string) (string, bool) {
	for off := 0; off+2 <= len(b); {
		tag := b[off]
		length := int(b[off+1])
		body := b[off+2:]
		if off+2+length > len(b) {
			break
		}
		body = body[:length]
		if tag == 0x48 && len(body) >= 2 {
			providerLen := int(body[1])
			rest := body[2:]
			if providerLen <= len(rest) {
				rest = rest[providerLen:]
				if len(rest) >= 1 {
					nameLen := int(rest[0])
					rest = rest[1:]
					if nameLen <= len(rest) {
						return decode(rest[:nameLen]), true
					}
				}
			}
		}
		off += 2 + length
	}
	return "", false
}

// BuildChannels joins PAT entries with SDT names and per-PMT A/V PIDs into
// Channel records. Services with no SDT name fall back to "Service {id}".
func BuildChannels(pat []dvbt.PatEntry, names map[uint16]string, pmts map[uint16]dvbt.PmtInfo) []dvbt.Channel {
	out := make([]dvbt.Channel, 0, len(pat))
	for _, entry := range pat {
		name, ok := names[entry.ServiceID]
		if !ok || name == "" {
			name = fmt.Sprintf("Service %d", entry.ServiceID)
		}
		info := pmts[entry.ServiceID]
		out = append(out, dvbt.Channel{
			Name:      name,
			ServiceID: entry.ServiceID,
			VideoPID:  info.VideoPID,
			AudioPID:  info.AudioPID,
		})
	}
	return out
}
