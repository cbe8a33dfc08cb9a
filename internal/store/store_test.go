package store

import (
	"path/filepath"
	"testing"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "epgrabber.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplaceChannelsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	channels := []dvbt.Channel{
		{Name: "公視", Frequency: 557000000, Modulation: "QAM_64", ServiceID: 1, VideoPID: 4097, AudioPID: 4098},
		{Name: "民視", Frequency: 557000000, Modulation: "QAM_64", ServiceID: 2, VideoPID: 4099, AudioPID: 4100},
	}
	if err := s.ReplaceChannels(channels); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}
	got, err := s.Channels()
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(got) != 2 || got[0].ServiceID != 1 || got[1].ServiceID != 2 {
		t.Errorf("got %+v", got)
	}
	if got[0].Name != "公視" {
		t.Errorf("got name %q", got[0].Name)
	}
}

func TestReplaceChannelsClearsPriorScan(t *testing.T) {
	s := openTestStore(t)
	if err := s.ReplaceChannels([]dvbt.Channel{{ServiceID: 1, Name: "old"}}); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}
	if err := s.ReplaceChannels([]dvbt.Channel{{ServiceID: 2, Name: "new"}}); err != nil {
		t.Fatalf("ReplaceChannels: %v", err)
	}
	got, err := s.Channels()
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(got) != 1 || got[0].ServiceID != 2 {
		t.Errorf("expected only the second scan's channel, got %+v", got)
	}
}

func TestUpsertEventsReplacesOnDuplicateKey(t *testing.T) {
	s := openTestStore(t)
	ev := dvbt.EitEvent{ServiceID: 1, EventID: 100, StartTime: 1000, Duration: 60, EventName: "First"}
	if err := s.UpsertEvents([]dvbt.EitEvent{ev}); err != nil {
		t.Fatalf("UpsertEvents: %v", err)
	}
	ev.EventName = "Updated"
	if err := s.UpsertEvents([]dvbt.EitEvent{ev}); err != nil {
		t.Fatalf("UpsertEvents: %v", err)
	}
	events, err := s.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].EventName != "Updated" {
		t.Errorf("got %+v", events)
	}
}

func TestEventsOrderedByStartTime(t *testing.T) {
	s := openTestStore(t)
	events := []dvbt.EitEvent{
		{ServiceID: 1, EventID: 2, StartTime: 2000, EventName: "second"},
		{ServiceID: 1, EventID: 1, StartTime: 1000, EventName: "first"},
	}
	if err := s.UpsertEvents(events); err != nil {
		t.Fatalf("UpsertEvents: %v", err)
	}
	got, err := s.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 2 || got[0].EventName != "first" || got[1].EventName != "second" {
		t.Errorf("got %+v", got)
	}
}
