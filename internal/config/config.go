// Package config centralizes application configuration. It follows a
// "clean" configuration pattern where all tunables live outside the
// code and are sourced from command-line flags with environment-variable
// fallbacks (12-factor friendly). Flags are defined first so that
// `-help` shows all available knobs and their defaults.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-concurrency=4"})
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all process configuration derived from flags and
// environment variables. All fields are plain values so the struct
// can be safely copied and used across goroutines after construction.
type Config struct {
	// API credentials. The HubSpot token is a private-app token; the
	// Google token is a user OAuth bearer token supplied by the frontend
	// or the environment.
	HubSpotToken string
	GoogleToken  string

	// Server settings.
	Addr string // Listen address for the HTTP console, e.g. ":3001".

	// Import tunables control ingestion throughput.
	BatchSize     int           // Rows per HubSpot batch request (capped at 100).
	Concurrency   int           // Parallel batch workers.
	FallbackPause time.Duration // Sleep inserted during per-row fallback.
	DedupeColumn  string        // CSV column used to drop duplicate rows ("" disables).

	// Metrics selects an optional telemetry backend.
	MetricsBackend string // "", "prometheus" or "datadog".
	PushgatewayURL string // Prometheus pushgateway, when backend is "prometheus".
	DogstatsdAddr  string // dogstatsd address, when backend is "datadog".
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag
// to an environment-variable fallback via getenv, and then parsing args.
// This is the most testable entry point: callers supply a private FlagSet,
// a getenv func (often backed by a map), and a synthetic arg slice.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// The returned Config is fully populated; no further mutation occurs.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	// Inline helpers use the provided getenv to avoid touching process env.
	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	durationEnvOrDefaultFn := func(k string, d time.Duration) time.Duration {
		if v := getenv(k); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				return parsed
			}
		}
		return d
	}

	// Credentials
	fs.StringVar(&cfg.HubSpotToken, "hubspot_token", getenv("HUBSPOT_ACCESS_TOKEN"), "HubSpot private app access token")
	fs.StringVar(&cfg.GoogleToken, "google_token", getenv("GOOGLE_ACCESS_TOKEN"), "Google OAuth bearer token for Drive/Sheets")

	// Server
	fs.StringVar(&cfg.Addr, "addr", envOrDefaultFn("ADDR", ":3001"), "HTTP listen address")

	// Throughput & import behavior
	fs.IntVar(&cfg.BatchSize, "batch_size", intEnvOrDefaultFn("BATCH_SIZE", 100), "Rows per HubSpot batch request (max 100)")
	fs.IntVar(&cfg.Concurrency, "concurrency", intEnvOrDefaultFn("CONCURRENCY", 6), "Number of parallel batch workers")
	fs.DurationVar(&cfg.FallbackPause, "fallback_pause", durationEnvOrDefaultFn("FALLBACK_PAUSE", time.Second), "Pause inserted during per-row fallback")
	fs.StringVar(&cfg.DedupeColumn, "dedupe_column", getenv("DEDUPE_COLUMN"), "Column used to drop duplicate rows (empty disables)")

	// Metrics
	fs.StringVar(&cfg.MetricsBackend, "metrics_backend", getenv("METRICS_BACKEND"), "Metrics backend: 'prometheus', 'datadog' or empty")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", envOrDefaultFn("PUSHGATEWAY_URL", "http://localhost:9091"), "Prometheus pushgateway URL")
	fs.StringVar(&cfg.DogstatsdAddr, "dogstatsd_addr", envOrDefaultFn("DOGSTATSD_ADDR", "127.0.0.1:8125"), "dogstatsd address for the datadog backend")

	// Parse the provided args (nil means no extra args).
	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// LoadFrom is a compatibility wrapper around LoadFromArgs for call-sites
// that don't need to pass args explicitly (useful in some tests).
func LoadFrom(fs *flag.FlagSet, getenv func(string) string) *Config {
	return LoadFromArgs(fs, getenv, nil)
}

// Load is the production entry point. It wires the loader to the process
// flag set (flag.CommandLine), reads environment variables via os.Getenv,
// and parses os.Args[1:] as the CLI arguments.
func Load() *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}
