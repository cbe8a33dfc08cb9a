// Package metrics exposes Prometheus counters and gauges for scan and EIT
// collection activity, and a handler to serve them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SectionsCollected counts accepted sections, labeled by table_id.
	SectionsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epgrabber_sections_collected_total",
		Help: "Number of PSI/SI sections accepted by table_id.",
	}, []string{"table_id"})

	// SectionTimeouts counts SectionReader deadlines that produced nothing.
	SectionTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epgrabber_section_timeouts_total",
		Help: "Number of SectionReader collection passes that timed out empty.",
	})

	// EventsCollected counts de-duplicated EIT events accepted per scan.
	EventsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epgrabber_eit_events_collected_total",
		Help: "Number of de-duplicated EIT events collected.",
	})

	// TuneAttempts counts Frontend.Tune calls, labeled by lock outcome.
	TuneAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epgrabber_tune_attempts_total",
		Help: "Number of frontend tune attempts by outcome.",
	}, []string{"outcome"})

	// ChannelsKnown is the channel count of the last channels.conf load.
	ChannelsKnown = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "epgrabber_channels_known",
		Help: "Number of channels known from the last channels.conf load.",
	})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
