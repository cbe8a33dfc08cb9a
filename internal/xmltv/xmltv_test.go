package xmltv

import (
	"strings"
	"testing"
	"time"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
)

func TestWriteContainsChannelAndProgramme(t *testing.T) {
	channels := []dvbt.Channel{{Name: "公視", ServiceID: 1}}
	events := []dvbt.EitEvent{
		{ServiceID: 1, EventID: 100, StartTime: 1767225600, Duration: 1800, EventName: "News", Description: "Evening news", Language: "eng"},
	}

	var buf strings.Builder
	if err := Write(&buf, channels, events, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `id="svc-1"`) {
		t.Errorf("missing channel id, got:\n%s", out)
	}
	if !strings.Contains(out, "公視") {
		t.Errorf("missing channel display name, got:\n%s", out)
	}
	if !strings.Contains(out, "News") || !strings.Contains(out, "Evening news") {
		t.Errorf("missing programme title/desc, got:\n%s", out)
	}
	if !strings.Contains(out, `lang="eng"`) {
		t.Errorf("missing lang attribute, got:\n%s", out)
	}
}

func TestWriteSkipsEventsForUnknownService(t *testing.T) {
	channels := []dvbt.Channel{{Name: "Known", ServiceID: 1}}
	events := []dvbt.EitEvent{
		{ServiceID: 99, EventID: 1, StartTime: 0, Duration: 60, EventName: "Orphan"},
	}

	var buf strings.Builder
	if err := Write(&buf, channels, events, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "Orphan") {
		t.Errorf("event for unknown service should have been dropped, got:\n%s", buf.String())
	}
}

func TestWriteOmitsDescWhenEmpty(t *testing.T) {
	channels := []dvbt.Channel{{Name: "Ch", ServiceID: 1}}
	events := []dvbt.EitEvent{
		{ServiceID: 1, EventID: 1, StartTime: 0, Duration: 60, EventName: "Title only"},
	}

	var buf strings.Builder
	if err := Write(&buf, channels, events, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "<desc") {
		t.Errorf("expected no <desc> element when Description is empty, got:\n%s", buf.String())
	}
}

func TestWriteDefaultsNilLocationToUTC(t *testing.T) {
	channels := []dvbt.Channel{{Name: "Ch", ServiceID: 1}}
	events := []dvbt.EitEvent{{ServiceID: 1, StartTime: 0, Duration: 60, EventName: "E"}}

	var buf strings.Builder
	if err := Write(&buf, channels, events, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `start="19700101000000 +0000"`) {
		t.Errorf("expected UTC-formatted start time, got:\n%s", buf.String())
	}
}
