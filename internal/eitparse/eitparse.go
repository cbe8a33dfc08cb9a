// Package eitparse decodes Event Information Table sections (EN 300 468
// §5.2.4) into EIT events, using internal/timecode for timestamps and
// internal/dvbtext for descriptor text.
package eitparse

import (
	"errors"
	"fmt"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
	"github.com/dvbgrab/epgrabber/internal/dvbtext"
	"github.com/dvbgrab/epgrabber/internal/timecode"
)

const (
	shortEventDescriptorTag = 0x4D
)

// ErrBadSection is returned when an EIT section fails its table_id/header
// sanity checks.
var ErrBadSection = errors.New("eitparse: invalid EIT section")

// ParseSection decodes one EIT section's event loop (present/following,
// table_id 0x4E, or schedule, table_id 0x50-0x5F). Events with an invalid
// start_time/duration are skipped rather than aborting the whole section.
func ParseSection(sec []byte) ([]dvbt.EitEvent, error) {
	if len(sec) < 14 {
		return nil, ErrBadSection
	}
	tableID := sec[0]
	if !(tableID == 0x4E || (tableID >= 0x50 && tableID <= 0x5F)) {
		return nil, fmt.Errorf("%w: table_id 0x%02x", ErrBadSection, tableID)
	}
	sectionLength := int(sec[1]&0x0F)<<8 | int(sec[2])
	serviceID := uint16(sec[3])<<8 | uint16(sec[4])
	lastSectionNumber := sec[7]
	if tableID == 0x4E && lastSectionNumber > 1 {
		return nil, fmt.Errorf("%w: present/following section with last_section_number=%d", ErrBadSection, lastSectionNumber)
	}

	end := 3 + sectionLength - 4
	if end > len(sec) {
		end = len(sec)
	}
	off := 14
	var events []dvbt.EitEvent
	for off+12 <= end {
		eventID := uint16(sec[off])<<8 | uint16(sec[off+1])
		startTime, err := timecode.DecodeStartTime(sec[off+2 : off+7])
		if err != nil {
			break
		}
		duration, err := timecode.DecodeDuration(sec[off+7 : off+10])
		if err != nil {
			break
		}
		runningStatus := sec[off+10] >> 5
		descriptorsLoopLength := int(sec[off+10]&0x0F)<<8 | int(sec[off+11])
		descOff := off + 12
		descEnd := descOff + descriptorsLoopLength
		// A descriptor loop running past the section means the rest of the
		// event loop can't be trusted; stop here and keep what parsed so far.
		if descEnd > end {
			break
		}

		if timecode.ValidEvent(startTime, duration) {
			name, desc, lang := scanShortEventDescriptor(sec[descOff:descEnd])
			events = append(events, dvbt.EitEvent{
				ServiceID:     serviceID,
				EventID:       eventID,
				StartTime:     startTime,
				Duration:      duration,
				RunningStatus: runningStatus,
				EventName:     name,
				Description:   desc,
				Language:      lang,
			})
		}
		off = descEnd
	}
	return events, nil
}

// scanShortEventDescriptor walks an event's descriptor loop for a
// short_event_descriptor (tag 0x4D) and decodes its language, event_name
// and text fields.
func scanShortEventDescriptor(b []byte) (name, description, language string) {
	for off := 0; off+2 <= len(b); {
		tag := b[off]
		length := int(b[off+1])
		body := b[off+2:]
		if off+2+length > len(b) {
			break
		}
		body = body[:length]
		if tag == shortEventDescriptorTag && len(body) >= 4 {
			language = string(body[:3])
			rest := body[3:]
			nameLen := int(rest[0])
			rest = rest[1:]
			if nameLen <= len(rest) {
				name = dvbtext.Decode(rest[:nameLen])
				rest = rest[nameLen:]
				if len(rest) >= 1 {
					textLen := int(rest[0])
					rest = rest[1:]
					if textLen <= len(rest) {
						description = dvbtext.Decode(rest[:textLen])
					}
				}
			}
			return name, description, language
		}
		off += 2 + length
	}
	return "", "", ""
}
