// Package section implements SectionReader: a scoped resource representing
// one PID filter on one DVB demux device, plus a timed collection loop that
// assembles the distinct section_numbers of a multi-section table.
package section

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dvbgrab/epgrabber/internal/dvbioctl"
	"github.com/dvbgrab/epgrabber/internal/metrics"
)

const (
	filterSize = 16

	// dmxImmediateStart arms the filter to start immediately (DMX_IMMEDIATE_START).
	dmxImmediateStart = 4

	// demuxIOCType is the 'o' ioctl group byte DVB device ioctls share.
	demuxIOCType = 'o'
	// dmxSetFilterCmd is DMX_SET_FILTER's ioctl command number.
	dmxSetFilterCmd = 43

	maxSectionBytes = 4096
	minSectionBytes = 8
)

// dmxFilter is the kernel's struct dmx_filter: three 16-byte all-zero
// filter/mask/mode arrays match any table content at the installed PID.
type dmxFilter struct {
	Filter [filterSize]byte
	Mask   [filterSize]byte
	Mode   [filterSize]byte
}

// dmxSctFilterParams is the kernel's struct dmx_sct_filter_params. Field
// order and widths are kernel ABI (linux/dvb/dmx.h); Go's natural alignment
// for this field sequence matches the C layout on amd64/arm64, so no manual
// packing is needed beyond getting the field order right.
type dmxSctFilterParams struct {
	PID     uint16
	Filter  dmxFilter
	Timeout uint32
	Flags   uint32
}

// SectionReader exclusively owns one open demux file handle for its
// lifetime. Construction installs an all-zeros filter/mask pair (match any
// table content at the PID) armed to start immediately; Close releases the
// file.
type SectionReader struct {
	f   *os.File
	pid uint16
}

// Open opens the demux device for adapter and installs a section filter for
// pid.
func Open(adapter int, pid uint16) (*SectionReader, error) {
	path := fmt.Sprintf("/dev/dvb/adapter%d/demux0", adapter)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("section: open %s: %w", path, err)
	}

	params := dmxSctFilterParams{PID: pid, Flags: dmxImmediateStart}
	req := dvbioctl.IOW(demuxIOCType, dmxSetFilterCmd, unsafe.Sizeof(params))
	if err := dvbioctl.Do(f.Fd(), req, unsafe.Pointer(&params)); err != nil {
		f.Close()
		return nil, fmt.Errorf("section: DMX_SET_FILTER pid=0x%04x: %w", pid, err)
	}
	return &SectionReader{f: f, pid: pid}, nil
}

// Close releases the demux file handle.
func (r *SectionReader) Close() error {
	return r.f.Close()
}

// readOne blocks (up to waitMillis) for readiness, then reads one section.
// It returns (nil, nil) on a readiness timeout with nothing to read.
func (r *SectionReader) readOne(waitMillis int) ([]byte, error) {
	fds := []unix.PollFd{{Fd: int32(r.f.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, waitMillis)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("section: poll: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, maxSectionBytes)
	nr, err := r.f.Read(buf)
	if err != nil {
		return nil, nil // transient device read error; caller keeps trying
	}
	return buf[:nr], nil
}

// ReadOne waits up to wait for the filter to produce data and reads one raw
// section, with no header interpretation beyond the kernel's framing. It
// returns (nil, nil) when the wait elapses with nothing to read. Callers
// that need the multi-section collect-and-terminate behavior use
// ReadSections instead; ReadOne is for PIDs like EIT's 0x12 that multiplex
// many independent subtables and can't be batched by section_number.
func (r *SectionReader) ReadOne(wait time.Duration) ([]byte, error) {
	waitMillis := int(wait / time.Millisecond)
	if waitMillis < 0 {
		waitMillis = 0
	}
	return r.readOne(waitMillis)
}

// ReadSections collects sections from this reader's PID until either
// overallTimeout elapses or every section number through last_section_number
// has been seen, whichever comes first. accept filters by table_id (byte 0);
// sections shorter than 8 bytes or rejected by accept are dropped silently.
//
// Sections are de-duplicated by first occurrence of each section_number and
// returned sorted by section_number ascending. A deadline that has already
// elapsed returns without polling again. If the deadline expires with
// nothing collected, it returns a TimeoutError; if some but not all
// sections arrived, it returns what was collected with a nil error.
func (r *SectionReader) ReadSections(accept func(tableID byte) bool, overallTimeout time.Duration) ([][]byte, error) {
	deadline := time.Now().Add(overallTimeout)
	collected := map[byte][]byte{}
	var lastSectionNumber int = -1

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		waitMillis := int(remaining / time.Millisecond)
		if waitMillis > 5000 {
			waitMillis = 5000
		}
		if waitMillis < 0 {
			waitMillis = 0
		}

		buf, err := r.readOne(waitMillis)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			continue
		}
		if len(buf) < minSectionBytes {
			continue
		}
		if !accept(buf[0]) {
			continue
		}

		sectionNumber := buf[6]
		last := buf[7]
		lastSectionNumber = int(last)
		if _, seen := collected[sectionNumber]; !seen {
			collected[sectionNumber] = buf
			metrics.SectionsCollected.WithLabelValues(fmt.Sprintf("0x%02x", buf[0])).Inc()
		}

		// A table with last_section_number L has exactly L+1 sections.
		if len(collected) == lastSectionNumber+1 {
			break
		}
	}

	if len(collected) == 0 {
		metrics.SectionTimeouts.Inc()
		return nil, &TimeoutError{PID: r.pid}
	}
	if lastSectionNumber >= 0 && len(collected) <= lastSectionNumber {
		log.Printf("section: pid=0x%04x: only %d/%d sections collected before deadline",
			r.pid, len(collected), lastSectionNumber+1)
	}

	nums := make([]int, 0, len(collected))
	for n := range collected {
		nums = append(nums, int(n))
	}
	sort.Ints(nums)
	out := make([][]byte, 0, len(nums))
	for _, n := range nums {
		out = append(out, collected[byte(n)])
	}
	return out, nil
}

// TimeoutError is returned when a PID filter produced no accepted section
// before its deadline.
type TimeoutError struct {
	PID uint16
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("section: timeout waiting for sections on pid=0x%04x", e.PID)
}
