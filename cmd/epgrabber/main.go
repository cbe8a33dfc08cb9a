// Command epgrabber tunes a DVB-T frontend, scans for channels, collects
// Event Information Table data, keeps the result in a SQLite cache, and
// serves it as channels.conf and an XMLTV guide.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dvbgrab/epgrabber/internal/channelfile"
	"github.com/dvbgrab/epgrabber/internal/config"
	"github.com/dvbgrab/epgrabber/internal/doctor"
	"github.com/dvbgrab/epgrabber/internal/dvbt"
	"github.com/dvbgrab/epgrabber/internal/eitcollect"
	"github.com/dvbgrab/epgrabber/internal/fileserve"
	"github.com/dvbgrab/epgrabber/internal/frontend"
	"github.com/dvbgrab/epgrabber/internal/metrics"
	"github.com/dvbgrab/epgrabber/internal/scanfile"
	"github.com/dvbgrab/epgrabber/internal/scanorch"
	"github.com/dvbgrab/epgrabber/internal/store"
	"github.com/dvbgrab/epgrabber/internal/usbenum"
	"github.com/dvbgrab/epgrabber/internal/xmltv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("epgrabber: reading .env: %v", err)
	}
	cfg := config.Load()

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(cfg, os.Args[2:])
	case "scan-channels":
		err = cmdScanChannels(cfg, os.Args[2:])
	case "save-xmltv":
		err = cmdSaveXMLTV(cfg, os.Args[2:])
	case "doctor":
		err = cmdDoctor(cfg)
	case "serve":
		err = cmdServe(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("epgrabber: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: epgrabber <run|scan-channels|save-xmltv|doctor|serve> [flags]")
}

// cmdRun tunes once per distinct frequency in channels.conf and collects
// EIT events for each, printing each frequency's events with the name of
// their known service.
func cmdRun(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	channelsPath := fs.String("C", cfg.ChannelsConfPath, "channels.conf path")
	fs.Parse(args)

	f, err := os.Open(*channelsPath)
	if err != nil {
		return err
	}
	channels, err := channelfile.Parse(f)
	f.Close()
	if err != nil {
		return err
	}
	metrics.ChannelsKnown.Set(float64(len(channels)))

	byFrequency := map[uint64][]dvbt.Channel{}
	for _, ch := range channels {
		byFrequency[ch.Frequency] = append(byFrequency[ch.Frequency], ch)
	}
	frequencies := make([]uint64, 0, len(byFrequency))
	for freq := range byFrequency {
		frequencies = append(frequencies, freq)
	}
	sort.Slice(frequencies, func(i, j int) bool { return frequencies[i] < frequencies[j] })

	knownByServiceID := map[uint16]dvbt.Channel{}
	for _, ch := range channels {
		knownByServiceID[ch.ServiceID] = ch
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.ReplaceChannels(channels); err != nil {
		return err
	}

	fe, err := frontend.Open(cfg.Adapter, cfg.FrontendIndex)
	if err != nil {
		return err
	}
	defer fe.Close()

	collector := &eitcollect.Collector{Adapter: cfg.Adapter}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, freq := range frequencies {
		group := byFrequency[freq]
		fmt.Printf("frequency %d Hz (%d services)\n", freq, len(group))

		// All channels in the group share tuning parameters; any of them
		// tunes the whole multiplex.
		err := fe.Tune(ctx, group[0])
		metrics.TuneAttempts.WithLabelValues(outcomeLabel(err)).Inc()
		if err != nil {
			log.Printf("tune %d Hz: %v", freq, err)
			continue
		}

		if lock, err := fe.HasLock(); err == nil && !lock {
			log.Printf("frontend lost lock before EIT read at %d Hz", freq)
		}

		events, err := collector.Collect(ctx, cfg.EitWindow)
		if err != nil {
			log.Printf("eit collect for %d Hz: %v", freq, err)
			continue
		}
		metrics.EventsCollected.Add(float64(len(events)))
		if err := db.UpsertEvents(events); err != nil {
			log.Printf("store events for %d Hz: %v", freq, err)
		}

		for _, ev := range events {
			if ch, ok := knownByServiceID[ev.ServiceID]; ok {
				fmt.Printf("  %s: %s\n", ch.Name, ev.EventName)
			} else {
				fmt.Printf("  Unknown service %d: %s\n", ev.ServiceID, ev.EventName)
			}
		}
	}
	return nil
}

// cmdScanChannels tunes to every entry in a dvbv5 scan file, discovers
// channels via PAT/SDT/PMT, and rewrites channels.conf (backing up the old
// one to .old).
func cmdScanChannels(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("scan-channels", flag.ExitOnError)
	scanPath := fs.String("C", cfg.ScanFilePath, "dvbv5 scan file path")
	outPath := fs.String("o", cfg.ChannelsConfPath, "channels.conf output path")
	dvbv5Path := fs.String("O", "", "also write discovered channels as a dvbv5 scan file")
	fs.Parse(args)

	if *scanPath == "" {
		return fmt.Errorf("scan-channels: -C scan file path is required")
	}
	sf, err := os.Open(*scanPath)
	if err != nil {
		return err
	}
	entries, err := scanfile.Parse(sf)
	sf.Close()
	if err != nil {
		return err
	}

	orch := &scanorch.Orchestrator{Adapter: cfg.Adapter, FrontendIndex: cfg.FrontendIndex}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.TuneTimeout*time.Duration(len(entries)+1))
	defer cancel()

	var all []dvbt.Channel
	for _, entry := range entries {
		channels, err := orch.ScanFrequency(ctx, entry, scanfile.ToChannel)
		metrics.TuneAttempts.WithLabelValues(outcomeLabel(err)).Inc()
		if err != nil {
			log.Printf("scan %d Hz: %v", entry.Frequency, err)
			continue
		}
		all = append(all, channels...)
	}

	if _, err := os.Stat(*outPath); err == nil {
		if err := os.Rename(*outPath, *outPath+".old"); err != nil {
			log.Printf("backup %s: %v", *outPath, err)
		}
	}
	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := channelfile.Write(out, all); err != nil {
		return err
	}
	fmt.Printf("wrote %d channels to %s\n", len(all), *outPath)

	if *dvbv5Path != "" {
		entries := make([]dvbt.ScanEntry, 0, len(all))
		for _, ch := range all {
			entries = append(entries, scanfile.FromChannel(ch))
		}
		df, err := os.Create(*dvbv5Path)
		if err != nil {
			return err
		}
		defer df.Close()
		if err := scanfile.Write(df, entries); err != nil {
			return err
		}
	}
	return nil
}

func outcomeLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// cmdSaveXMLTV writes an XMLTV guide from the cached channels/events store.
func cmdSaveXMLTV(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("save-xmltv", flag.ExitOnError)
	outPath := fs.String("o", "guide.xml", "XMLTV output path")
	fs.Parse(args)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	channels, err := db.Channels()
	if err != nil {
		return err
	}
	events, err := db.Events()
	if err != nil {
		return err
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := xmltv.Write(out, channels, events, time.Local); err != nil {
		return err
	}
	fmt.Printf("wrote %d channels, %d events to %s\n", len(channels), len(events), *outPath)
	return nil
}

// cmdDoctor runs the diagnostic checks and exits nonzero if any fail.
func cmdDoctor(cfg *config.Config) error {
	results := []doctor.Result{
		{Name: "frontend device", Err: doctor.CheckFrontend(cfg.Adapter, cfg.FrontendIndex)},
		{Name: "demux device", Err: doctor.CheckDemux(cfg.Adapter)},
	}
	if lock, err := doctor.FrontendLock(cfg.Adapter, cfg.FrontendIndex); err != nil {
		results = append(results, doctor.Result{Name: "frontend status", Err: err})
	} else {
		results = append(results, doctor.Result{Name: fmt.Sprintf("frontend status (has_lock=%v)", lock)})
	}
	if n, err := doctor.CheckChannelsConf(cfg.ChannelsConfPath); err != nil {
		results = append(results, doctor.Result{Name: "channels.conf", Err: err})
	} else {
		results = append(results, doctor.Result{Name: fmt.Sprintf("channels.conf (%d channels)", n)})
	}

	summary, ok := doctor.Summary(results)
	fmt.Print(summary)

	devices, err := usbenum.Detect()
	if err != nil {
		log.Printf("device detection: %v", err)
	}
	for _, d := range devices {
		line := fmt.Sprintf("detected adapter%d/frontend%d", d.Adapter, d.FrontendIndex)
		switch {
		case d.VendorName != "" || d.ProductName != "":
			line += fmt.Sprintf(" (%s %s)", d.VendorName, d.ProductName)
		case d.VendorID != "":
			line += fmt.Sprintf(" (usb %s:%s)", d.VendorID, d.ProductID)
		}
		fmt.Println(line)
	}

	if !ok {
		os.Exit(1)
	}
	return nil
}

// cmdServe serves channels.conf and a live-generated XMLTV guide, both built
// from the store, over HTTP, refusing to bind non-loopback addresses unless
// --public is passed.
func cmdServe(cfg *config.Config, args []string) error {
	defaultHost, defaultPort, err := net.SplitHostPort(cfg.ServeBindAddr)
	if err != nil {
		defaultHost, defaultPort = cfg.ServeBindAddr, "8080"
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	bindHost := fs.String("b", defaultHost, "bind host/address")
	bindPort := fs.String("p", defaultPort, "bind port")
	public := fs.Bool("public", cfg.ServePublic, "allow binding a non-loopback address")
	fs.Parse(args)

	bindAddr := net.JoinHostPort(*bindHost, *bindPort)
	if err := fileserve.Guard(bindAddr, *public); err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/channels.conf", func(w http.ResponseWriter, r *http.Request) {
		channels, err := db.Channels()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := channelfile.Write(w, channels); err != nil {
			log.Printf("serve channels.conf: %v", err)
		}
	})
	mux.HandleFunc("/guide.xml", func(w http.ResponseWriter, r *http.Request) {
		channels, err := db.Channels()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events, err := db.Events()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		if err := xmltv.Write(w, channels, events, time.Local); err != nil {
			log.Printf("serve guide.xml: %v", err)
		}
	})
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", metrics.Handler())
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		os.Exit(0)
	}()

	log.Printf("serving on %s", bindAddr)
	return fileserve.Serve(bindAddr, mux)
}
