// Package eitcollect runs a timed EIT collection pass against a tuned
// frontend's demux, de-duplicating sections and events, and returns the
// accumulated events sorted by start time.
package eitcollect

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
	"github.com/dvbgrab/epgrabber/internal/eitparse"
	"github.com/dvbgrab/epgrabber/internal/metrics"
	"github.com/dvbgrab/epgrabber/internal/section"
)

// eitPID is the fixed PID EIT sections are transmitted on.
const eitPID = 0x12

// sectionKey identifies one EIT section instance for de-duplication.
type sectionKey struct {
	serviceID     uint16
	tableID       byte
	sectionNumber byte
}

// eventKey identifies one EIT event for de-duplication across sections.
type eventKey struct {
	serviceID uint16
	eventID   uint16
}

// collectState accumulates events across the retransmitted EIT carousel:
// sections repeat every few seconds and the same event appears in both the
// present/following and schedule tables, so both layers need stable-key
// de-duplication to bound memory.
type collectState struct {
	seenSections map[sectionKey]bool
	seenEvents   map[eventKey]bool
	events       []dvbt.EitEvent
}

func newCollectState() *collectState {
	return &collectState{
		seenSections: map[sectionKey]bool{},
		seenEvents:   map[eventKey]bool{},
	}
}

// absorb parses one raw EIT section, skipping sections and events already
// seen. A section that fails to parse is logged and dropped; collection
// continues.
func (s *collectState) absorb(sec []byte) {
	if len(sec) < 8 {
		return
	}
	serviceID := uint16(sec[3])<<8 | uint16(sec[4])
	key := sectionKey{serviceID: serviceID, tableID: sec[0], sectionNumber: sec[6]}
	if s.seenSections[key] {
		return
	}
	s.seenSections[key] = true

	parsed, err := eitparse.ParseSection(sec)
	if err != nil {
		log.Printf("eit: service=%d table=0x%02x: %v", serviceID, sec[0], err)
		return
	}
	for _, ev := range parsed {
		ek := eventKey{serviceID: ev.ServiceID, eventID: ev.EventID}
		if s.seenEvents[ek] {
			continue
		}
		s.seenEvents[ek] = true
		s.events = append(s.events, ev)
	}
}

// sorted returns the accumulated events ordered by StartTime ascending,
// insertion order breaking ties.
func (s *collectState) sorted() []dvbt.EitEvent {
	sort.SliceStable(s.events, func(i, j int) bool { return s.events[i].StartTime < s.events[j].StartTime })
	return s.events
}

// Collector reads EIT sections for a fixed wall-clock window, accepting
// present/following (0x4E) and schedule (0x50-0x5F) table IDs.
type Collector struct {
	Adapter int
}

// sectionSource is the single-read surface Collect consumes; satisfied by
// *section.SectionReader.
type sectionSource interface {
	ReadOne(wait time.Duration) ([]byte, error)
}

// Collect opens a demux filter on the EIT PID and reads sections until
// window elapses, returning de-duplicated events sorted by StartTime.
//
// The EIT PID carries every service's present/following and schedule
// subtables interleaved, all sharing the same section_number space, so
// sections go straight from the device to the (service_id, table_id,
// section_number)-keyed state — there is no per-table "all sections seen"
// condition to terminate on, only the window.
func (c *Collector) Collect(ctx context.Context, window time.Duration) ([]dvbt.EitEvent, error) {
	r, err := section.Open(c.Adapter, eitPID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return collect(ctx, r, window), nil
}

func collect(ctx context.Context, src sectionSource, window time.Duration) []dvbt.EitEvent {
	deadline := time.Now().Add(window)
	state := newCollectState()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 || ctx.Err() != nil {
			break
		}
		if remaining > 5*time.Second {
			remaining = 5 * time.Second
		}
		sec, err := src.ReadOne(remaining)
		if err != nil {
			log.Printf("eit: read: %v", err)
			break
		}
		if sec == nil {
			continue
		}
		if len(sec) < 8 || !acceptEITTable(sec[0]) {
			continue
		}
		metrics.SectionsCollected.WithLabelValues(fmt.Sprintf("0x%02x", sec[0])).Inc()
		state.absorb(sec)
	}

	return state.sorted()
}

func acceptEITTable(tableID byte) bool {
	return tableID == 0x4E || (tableID >= 0x50 && tableID <= 0x5F)
}
