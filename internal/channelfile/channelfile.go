// Package channelfile reads and writes the colon-delimited channels.conf
// format: one Channel per line, 13 fields, zap tuning vocabulary.
package channelfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
)

const fieldCount = 13

// Parse reads channels.conf-format lines from r into Channel records.
// Blank lines and # comments are skipped; a malformed line is reported
// with its 1-based line number.
func Parse(r io.Reader) ([]dvbt.Channel, error) {
	var channels []dvbt.Channel
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != fieldCount {
			return nil, fmt.Errorf("channelfile: line %d: expected %d fields, got %d", lineNo, fieldCount, len(fields))
		}
		ch, err := parseFields(fields)
		if err != nil {
			return nil, fmt.Errorf("channelfile: line %d: %w", lineNo, err)
		}
		channels = append(channels, ch)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("channelfile: %w", err)
	}
	return channels, nil
}

func parseFields(f []string) (dvbt.Channel, error) {
	var ch dvbt.Channel
	ch.Name = f[0]

	freq, err := strconv.ParseUint(f[1], 10, 64)
	if err != nil {
		return ch, fmt.Errorf("frequency: %w", err)
	}
	ch.Frequency = freq
	ch.Inversion = f[2]
	ch.Bandwidth = f[3]
	ch.FECHP = f[4]
	ch.FECLP = f[5]
	ch.Modulation = f[6]
	ch.TransmissionMode = f[7]
	ch.GuardInterval = f[8]
	ch.Hierarchy = f[9]

	videoPID, err := strconv.ParseUint(f[10], 10, 16)
	if err != nil {
		return ch, fmt.Errorf("video pid: %w", err)
	}
	ch.VideoPID = uint16(videoPID)

	audioPID, err := strconv.ParseUint(f[11], 10, 16)
	if err != nil {
		return ch, fmt.Errorf("audio pid: %w", err)
	}
	ch.AudioPID = uint16(audioPID)

	serviceID, err := strconv.ParseUint(f[12], 10, 16)
	if err != nil {
		return ch, fmt.Errorf("service id: %w", err)
	}
	ch.ServiceID = uint16(serviceID)

	return ch, nil
}

// Write serializes channels back to channels.conf format, one per line.
func Write(w io.Writer, channels []dvbt.Channel) error {
	bw := bufio.NewWriter(w)
	for _, ch := range channels {
		line := strings.Join([]string{
			ch.Name,
			strconv.FormatUint(ch.Frequency, 10),
			ch.Inversion,
			ch.Bandwidth,
			ch.FECHP,
			ch.FECLP,
			ch.Modulation,
			ch.TransmissionMode,
			ch.GuardInterval,
			ch.Hierarchy,
			strconv.FormatUint(uint64(ch.VideoPID), 10),
			strconv.FormatUint(uint64(ch.AudioPID), 10),
			strconv.FormatUint(uint64(ch.ServiceID), 10),
		}, ":")
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return fmt.Errorf("channelfile: write: %w", err)
		}
	}
	return bw.Flush()
}
