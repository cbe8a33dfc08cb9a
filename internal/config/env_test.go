package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEnvFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadEnvFileMissingIsNotAnError(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "no-such.env")); err != nil {
		t.Fatalf("missing file should load as empty: %v", err)
	}
}

func TestLoadEnvFileFeedsLoad(t *testing.T) {
	path := writeEnvFile(t, "# adapter pinned for the living-room tuner\nEPGRABBER_ADAPTER=1\n\nEPGRABBER_EIT_WINDOW=45s\n")
	t.Setenv("EPGRABBER_ADAPTER", "")
	t.Setenv("EPGRABBER_EIT_WINDOW", "")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	cfg := Load()
	if cfg.Adapter != 1 {
		t.Errorf("got adapter %d, want 1", cfg.Adapter)
	}
	if cfg.EitWindow != 45*time.Second {
		t.Errorf("got EIT window %v, want 45s", cfg.EitWindow)
	}
}

func TestLoadEnvFileUnquotesValues(t *testing.T) {
	path := writeEnvFile(t, "EPGRABBER_CHANNELS_CONF=\"my channels.conf\"\n")
	t.Setenv("EPGRABBER_CHANNELS_CONF", "")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("EPGRABBER_CHANNELS_CONF"); got != "my channels.conf" {
		t.Errorf("got %q, want %q", got, "my channels.conf")
	}
}

func TestLoadEnvFileSkipsMalformedLines(t *testing.T) {
	path := writeEnvFile(t, "not-a-pair\n=no-key\nEPGRABBER_FRONTEND=2\n")
	t.Setenv("EPGRABBER_FRONTEND", "")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("EPGRABBER_FRONTEND"); got != "2" {
		t.Errorf("got %q, want %q", got, "2")
	}
}
