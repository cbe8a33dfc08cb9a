// Package scanorch orchestrates a full per-frequency channel scan: tune,
// read PAT, read SDT, then read one PMT per PAT entry, producing Channel
// records with names, PIDs and service_id filled in.
package scanorch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
	"github.com/dvbgrab/epgrabber/internal/dvbtext"
	"github.com/dvbgrab/epgrabber/internal/frontend"
	"github.com/dvbgrab/epgrabber/internal/psi"
	"github.com/dvbgrab/epgrabber/internal/section"
)

const (
	patPID = 0x00
	sdtPID = 0x11

	sectionTimeout = 5 * time.Second

	// pmtPollInterval paces successive per-service PMT reads so a
	// many-service multiplex doesn't hammer the demux device with
	// back-to-back filter installs.
	pmtPollInterval = 200 * time.Millisecond
)

// Orchestrator ties a frontend device to a demux adapter index for a full
// scan pass.
type Orchestrator struct {
	Adapter       int
	FrontendIndex int
}

// ScanFrequency tunes to entry's parameters and reads PAT, SDT and each
// service's PMT, returning Channel records. A PMT read failure for one
// service does not abort the scan; that service's Channel keeps zero PIDs.
func (o *Orchestrator) ScanFrequency(ctx context.Context, entry dvbt.ScanEntry, toChannel func(dvbt.ScanEntry) (dvbt.Channel, error)) ([]dvbt.Channel, error) {
	tuningChannel, err := toChannel(entry)
	if err != nil {
		return nil, fmt.Errorf("scanorch: %w", err)
	}

	fe, err := frontend.Open(o.Adapter, o.FrontendIndex)
	if err != nil {
		return nil, err
	}
	defer fe.Close()

	if err := fe.Tune(ctx, tuningChannel); err != nil {
		return nil, fmt.Errorf("scanorch: tune: %w", err)
	}

	patEntries, err := o.readPAT(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanorch: PAT: %w", err)
	}

	// A multiplex without a readable SDT still scans; services just get
	// fallback names.
	names, err := o.readSDT(ctx)
	if err != nil {
		var timeout *section.TimeoutError
		if !errors.As(err, &timeout) {
			return nil, fmt.Errorf("scanorch: SDT: %w", err)
		}
		log.Printf("scanorch: SDT timed out; using fallback service names")
		names = map[uint16]string{}
	}

	pmts := o.readPMTs(ctx, patEntries)

	channels := psi.BuildChannels(patEntries, names, pmts)
	for i := range channels {
		channels[i].Frequency = entry.Frequency
		channels[i].Inversion = tuningChannel.Inversion
		channels[i].Bandwidth = tuningChannel.Bandwidth
		channels[i].FECHP = tuningChannel.FECHP
		channels[i].FECLP = tuningChannel.FECLP
		channels[i].Modulation = tuningChannel.Modulation
		channels[i].TransmissionMode = tuningChannel.TransmissionMode
		channels[i].GuardInterval = tuningChannel.GuardInterval
		channels[i].Hierarchy = tuningChannel.Hierarchy
	}
	return channels, nil
}

func (o *Orchestrator) readPAT(ctx context.Context) ([]dvbt.PatEntry, error) {
	r, err := section.Open(o.Adapter, patPID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sections, err := r.ReadSections(func(tableID byte) bool { return tableID == psi.TableIDPAT }, sectionTimeout)
	if err != nil {
		return nil, err
	}
	return psi.ParsePAT(sections)
}

func (o *Orchestrator) readSDT(ctx context.Context) (map[uint16]string, error) {
	r, err := section.Open(o.Adapter, sdtPID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sections, err := r.ReadSections(func(tableID byte) bool { return tableID == psi.TableIDSDT }, sectionTimeout)
	if err != nil {
		return nil, err
	}
	return psi.ParseSDT(sections, dvbtext.Decode), nil
}

func (o *Orchestrator) readPMTs(ctx context.Context, entries []dvbt.PatEntry) map[uint16]dvbt.PmtInfo {
	out := map[uint16]dvbt.PmtInfo{}
	limiter := rate.NewLimiter(rate.Every(pmtPollInterval), 1)
	for _, entry := range entries {
		if err := limiter.Wait(ctx); err != nil {
			return out
		}
		info, err := o.readPMT(entry.PMTPID)
		if err != nil {
			continue
		}
		out[entry.ServiceID] = info
	}
	return out
}

func (o *Orchestrator) readPMT(pid uint16) (dvbt.PmtInfo, error) {
	r, err := section.Open(o.Adapter, pid)
	if err != nil {
		return dvbt.PmtInfo{}, err
	}
	defer r.Close()

	sections, err := r.ReadSections(func(tableID byte) bool { return tableID == psi.TableIDPMT }, sectionTimeout)
	if err != nil {
		return dvbt.PmtInfo{}, err
	}
	if len(sections) == 0 {
		return dvbt.PmtInfo{}, fmt.Errorf("scanorch: no PMT sections for pid 0x%04x", pid)
	}
	return psi.ParsePMT(sections[0])
}
