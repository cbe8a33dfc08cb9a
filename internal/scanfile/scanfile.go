// Package scanfile parses dvbv5 scan files: a sequence of [CHANNEL] blocks,
// each a set of "KEY = value" lines, into ScanEntry tuning records.
package scanfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
	"github.com/dvbgrab/epgrabber/internal/zap"
)

// Parse reads a dvbv5 scan file into ScanEntry records, one per [CHANNEL]
// block.
func Parse(r io.Reader) ([]dvbt.ScanEntry, error) {
	var entries []dvbt.ScanEntry
	var cur map[string]string
	scanner := bufio.NewScanner(r)
	lineNo := 0

	flush := func() error {
		if cur == nil {
			return nil
		}
		entry, err := buildEntry(cur)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		cur = nil
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if err := flush(); err != nil {
				return nil, fmt.Errorf("scanfile: line %d: %w", lineNo, err)
			}
			cur = map[string]string{}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("scanfile: line %d: expected KEY = value", lineNo)
		}
		if cur == nil {
			return nil, fmt.Errorf("scanfile: line %d: key outside a [CHANNEL] block", lineNo)
		}
		cur[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanfile: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}

func buildEntry(fields map[string]string) (dvbt.ScanEntry, error) {
	var e dvbt.ScanEntry
	e.DeliverySystem = fields["DELIVERY_SYSTEM"]

	freq, err := strconv.ParseUint(fields["FREQUENCY"], 10, 64)
	if err != nil {
		return e, fmt.Errorf("FREQUENCY: %w", err)
	}
	e.Frequency = freq

	if v, ok := fields["BANDWIDTH_HZ"]; ok {
		bw, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return e, fmt.Errorf("BANDWIDTH_HZ: %w", err)
		}
		e.BandwidthHz = bw
	}

	e.CodeRateHP = fields["CODE_RATE_HP"]
	e.CodeRateLP = fields["CODE_RATE_LP"]
	e.Modulation = fields["MODULATION"]
	e.TransmissionMode = fields["TRANSMISSION_MODE"]
	e.GuardInterval = fields["GUARD_INTERVAL"]
	e.Hierarchy = fields["HIERARCHY"]
	e.Inversion = fields["INVERSION"]
	if e.Inversion == "" {
		e.Inversion = "AUTO"
	}
	return e, nil
}

// FromChannel projects a Channel's tuning parameters back into the dvbv5
// vocabulary. Name, PIDs and service_id don't survive the projection; the
// dvbv5 format carries tuning parameters only.
func FromChannel(ch dvbt.Channel) dvbt.ScanEntry {
	return dvbt.ScanEntry{
		DeliverySystem:   "DVBT",
		Frequency:        ch.Frequency,
		BandwidthHz:      zap.FromZapBandwidth(ch.Bandwidth),
		CodeRateHP:       zap.FromZapFEC(ch.FECHP),
		CodeRateLP:       zap.FromZapFEC(ch.FECLP),
		Modulation:       zap.FromZapModulation(ch.Modulation),
		TransmissionMode: zap.FromZapTransmissionMode(ch.TransmissionMode),
		GuardInterval:    zap.FromZapGuardInterval(ch.GuardInterval),
		Hierarchy:        zap.FromZapHierarchy(ch.Hierarchy),
		Inversion:        zap.FromZapInversion(ch.Inversion),
	}
}

// Write emits entries in dvbv5 scan-file format, one [CHANNEL] block per
// entry. A zero BandwidthHz omits the BANDWIDTH_HZ key.
func Write(w io.Writer, entries []dvbt.ScanEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		fmt.Fprintln(bw, "[CHANNEL]")
		if e.DeliverySystem != "" {
			fmt.Fprintf(bw, "\tDELIVERY_SYSTEM = %s\n", e.DeliverySystem)
		}
		fmt.Fprintf(bw, "\tFREQUENCY = %d\n", e.Frequency)
		if e.BandwidthHz != 0 {
			fmt.Fprintf(bw, "\tBANDWIDTH_HZ = %d\n", e.BandwidthHz)
		}
		fmt.Fprintf(bw, "\tCODE_RATE_HP = %s\n", e.CodeRateHP)
		fmt.Fprintf(bw, "\tCODE_RATE_LP = %s\n", e.CodeRateLP)
		fmt.Fprintf(bw, "\tMODULATION = %s\n", e.Modulation)
		fmt.Fprintf(bw, "\tTRANSMISSION_MODE = %s\n", e.TransmissionMode)
		fmt.Fprintf(bw, "\tGUARD_INTERVAL = %s\n", e.GuardInterval)
		fmt.Fprintf(bw, "\tHIERARCHY = %s\n", e.Hierarchy)
		if _, err := fmt.Fprintf(bw, "\tINVERSION = %s\n", e.Inversion); err != nil {
			return fmt.Errorf("scanfile: write: %w", err)
		}
	}
	return bw.Flush()
}

// ToChannel projects a ScanEntry into a Channel in zap vocabulary, with a
// blank name and zero PIDs/service_id left for the PAT/PMT/SDT scan pass to
// fill in. The zap translation is total, so this never fails for a parsed
// entry; the error return stays for scan passes that plug in stricter
// projections.
func ToChannel(e dvbt.ScanEntry) (dvbt.Channel, error) {
	return dvbt.Channel{
		Frequency:        e.Frequency,
		Inversion:        zap.ToZapInversion(e.Inversion),
		Bandwidth:        zap.ToZapBandwidth(e.BandwidthHz),
		FECHP:            zap.ToZapFEC(e.CodeRateHP),
		FECLP:            zap.ToZapFEC(e.CodeRateLP),
		Modulation:       zap.ToZapModulation(e.Modulation),
		TransmissionMode: zap.ToZapTransmissionMode(e.TransmissionMode),
		GuardInterval:    zap.ToZapGuardInterval(e.GuardInterval),
		Hierarchy:        zap.ToZapHierarchy(e.Hierarchy),
	}, nil
}
