// Package config loads epgrabber's runtime settings from the environment,
// with sensible defaults for every knob so a bare invocation works on
// adapter 0.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds adapter selection, file paths, timeouts and the serve
// verb's bind address.
type Config struct {
	Adapter       int
	FrontendIndex int

	ChannelsConfPath string
	ScanFilePath     string
	DBPath           string

	TuneTimeout    time.Duration
	SectionTimeout time.Duration
	EitWindow      time.Duration

	ServeBindAddr string
	ServePublic   bool

	MetricsEnabled bool
}

// Load reads Config from the environment, filling in epgrabber's defaults.
func Load() *Config {
	return &Config{
		Adapter:          getEnvInt("EPGRABBER_ADAPTER", 0),
		FrontendIndex:    getEnvInt("EPGRABBER_FRONTEND", 0),
		ChannelsConfPath: getEnv("EPGRABBER_CHANNELS_CONF", "channels.conf"),
		ScanFilePath:     getEnv("EPGRABBER_SCAN_FILE", ""),
		DBPath:           getEnv("EPGRABBER_DB_PATH", "epgrabber.db"),
		TuneTimeout:      getEnvDuration("EPGRABBER_TUNE_TIMEOUT", 10*time.Second),
		SectionTimeout:   getEnvDuration("EPGRABBER_SECTION_TIMEOUT", 5*time.Second),
		EitWindow:        getEnvDuration("EPGRABBER_EIT_WINDOW", 30*time.Second),
		ServeBindAddr:    getEnv("EPGRABBER_SERVE_ADDR", "127.0.0.1:8080"),
		ServePublic:      getEnvBool("EPGRABBER_SERVE_PUBLIC", false),
		MetricsEnabled:   getEnvBool("EPGRABBER_METRICS", true),
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
