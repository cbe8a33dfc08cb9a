package section

import (
	"os"
	"testing"
	"time"
)

// buildFakeSection returns a section-shaped byte slice with table_id,
// section_number and last_section_number at their header offsets; the
// body is irrelevant for the collection loop under test.
func buildFakeSection(tableID, sectionNumber, lastSectionNumber byte) []byte {
	b := make([]byte, 10)
	b[0] = tableID
	b[6] = sectionNumber
	b[7] = lastSectionNumber
	return b
}

// newPipeReader builds a SectionReader backed by an os.Pipe instead of a
// real demux device, so the collection loop can be exercised without
// kernel DVB support.
func newPipeReader(t *testing.T) (*SectionReader, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return &SectionReader{f: r, pid: 0x10}, w
}

func TestReadSectionsCollectsAllSections(t *testing.T) {
	reader, w := newPipeReader(t)
	go func() {
		w.Write(buildFakeSection(0x00, 0, 1))
		time.Sleep(20 * time.Millisecond) // avoid pipe coalescing the two writes into one Read
		w.Write(buildFakeSection(0x00, 1, 1))
	}()

	sections, err := reader.ReadSections(func(tableID byte) bool { return tableID == 0x00 }, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0][6] != 0 || sections[1][6] != 1 {
		t.Errorf("sections not sorted by section_number: %v, %v", sections[0][6], sections[1][6])
	}
}

func TestReadSectionsDeduplicatesBySectionNumber(t *testing.T) {
	reader, w := newPipeReader(t)
	go func() {
		w.Write(buildFakeSection(0x00, 0, 0))
		time.Sleep(20 * time.Millisecond)
		w.Write(buildFakeSection(0x00, 0, 0)) // duplicate; collected count must still reach 1
	}()

	sections, err := reader.ReadSections(func(tableID byte) bool { return tableID == 0x00 }, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1 after dedup", len(sections))
	}
}

func TestReadSectionsRejectsTableID(t *testing.T) {
	reader, w := newPipeReader(t)
	go func() {
		w.Write(buildFakeSection(0x42, 0, 0)) // wrong table_id, dropped
		time.Sleep(20 * time.Millisecond)
		w.Write(buildFakeSection(0x00, 0, 0))
	}()

	sections, err := reader.ReadSections(func(tableID byte) bool { return tableID == 0x00 }, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 || sections[0][0] != 0x00 {
		t.Errorf("got %+v", sections)
	}
}

func TestReadSectionsZeroDeadlineReturnsImmediately(t *testing.T) {
	reader, w := newPipeReader(t)
	w.Write(buildFakeSection(0x00, 0, 0)) // data is ready, but the deadline is already spent

	start := time.Now()
	_, err := reader.ReadSections(func(byte) bool { return true }, 0)
	if _, ok := err.(*TimeoutError); !ok {
		t.Fatalf("got %v, want *TimeoutError", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("expected immediate return, took %v", elapsed)
	}
}

func TestReadSectionsTimeoutWithNothingCollected(t *testing.T) {
	reader, _ := newPipeReader(t)
	_, err := reader.ReadSections(func(byte) bool { return true }, 50*time.Millisecond)
	if _, ok := err.(*TimeoutError); !ok {
		t.Fatalf("got %v, want *TimeoutError", err)
	}
}
