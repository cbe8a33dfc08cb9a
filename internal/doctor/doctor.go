// Package doctor runs the diagnostic checks behind the doctor verb:
// frontend/demux device presence, a one-shot signal-lock read, and
// channels.conf validity.
package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dvbgrab/epgrabber/internal/channelfile"
	"github.com/dvbgrab/epgrabber/internal/frontend"
)

// CheckFrontend reports whether the frontend device for adapter/frontendIndex
// exists.
func CheckFrontend(adapter, frontendIndex int) error {
	path := fmt.Sprintf("/dev/dvb/adapter%d/frontend%d", adapter, frontendIndex)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("frontend device %s: %w", path, err)
	}
	return nil
}

// FrontendLock opens the frontend device and reports whether it currently
// holds signal lock. A frontend with no lock is not a failure — it just
// hasn't been tuned — so the bool is reported separately from the error.
func FrontendLock(adapter, frontendIndex int) (bool, error) {
	fe, err := frontend.Open(adapter, frontendIndex)
	if err != nil {
		return false, err
	}
	defer fe.Close()
	return fe.HasLock()
}

// CheckDemux reports whether the demux device for adapter exists.
func CheckDemux(adapter int) error {
	path := fmt.Sprintf("/dev/dvb/adapter%d/demux0", adapter)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("demux device %s: %w", path, err)
	}
	return nil
}

// CheckChannelsConf reports whether path exists and parses as a valid
// channels.conf, returning the channel count on success.
func CheckChannelsConf(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("channels.conf %s: %w", path, err)
	}
	defer f.Close()
	channels, err := channelfile.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("channels.conf %s: %w", path, err)
	}
	if len(channels) == 0 {
		return 0, fmt.Errorf("channels.conf %s: no channels", path)
	}
	return len(channels), nil
}

// Result is one diagnostic check's outcome, formatted for terminal
// reporting.
type Result struct {
	Name string
	Err  error
}

// String renders a Result as a PASS/FAIL line.
func (r Result) String() string {
	if r.Err == nil {
		return fmt.Sprintf("[PASS] %s", r.Name)
	}
	return fmt.Sprintf("[FAIL] %s: %v", r.Name, r.Err)
}

// Summary joins Results into a multi-line report and reports whether every
// check passed.
func Summary(results []Result) (string, bool) {
	var b strings.Builder
	ok := true
	for _, r := range results {
		b.WriteString(r.String())
		b.WriteByte('\n')
		if r.Err != nil {
			ok = false
		}
	}
	return b.String(), ok
}
