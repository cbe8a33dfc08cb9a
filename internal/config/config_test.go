package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Adapter != 0 || cfg.FrontendIndex != 0 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.ChannelsConfPath != "channels.conf" {
		t.Errorf("got %q", cfg.ChannelsConfPath)
	}
	if cfg.TuneTimeout != 10*time.Second {
		t.Errorf("got %v", cfg.TuneTimeout)
	}
	if !cfg.MetricsEnabled {
		t.Errorf("expected metrics enabled by default")
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("EPGRABBER_ADAPTER", "2")
	t.Setenv("EPGRABBER_SERVE_PUBLIC", "true")
	t.Setenv("EPGRABBER_EIT_WINDOW", "1m")

	cfg := Load()
	if cfg.Adapter != 2 {
		t.Errorf("got adapter %d, want 2", cfg.Adapter)
	}
	if !cfg.ServePublic {
		t.Errorf("expected ServePublic true")
	}
	if cfg.EitWindow != time.Minute {
		t.Errorf("got EitWindow %v, want 1m", cfg.EitWindow)
	}
}

func TestGetEnvIntIgnoresUnparsableValue(t *testing.T) {
	t.Setenv("EPGRABBER_ADAPTER", "not-a-number")
	cfg := Load()
	if cfg.Adapter != 0 {
		t.Errorf("got %d, want fallback default 0", cfg.Adapter)
	}
}

func TestGetEnvBoolAcceptsYesVariant(t *testing.T) {
	t.Setenv("EPGRABBER_METRICS", "yes")
	if !getEnvBool("EPGRABBER_METRICS", false) {
		t.Errorf("expected true for \"yes\"")
	}
}

func TestGetEnvDurationFallsBackOnParseError(t *testing.T) {
	t.Setenv("EPGRABBER_TUNE_TIMEOUT", "not-a-duration")
	got := getEnvDuration("EPGRABBER_TUNE_TIMEOUT", 7*time.Second)
	if got != 7*time.Second {
		t.Errorf("got %v, want fallback 7s", got)
	}
}
