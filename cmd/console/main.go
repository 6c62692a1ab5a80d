// Command console serves the HTTP backend for the CRM import console:
// HubSpot proxy routes, Google Sheets browsing, and CSV import runs with
// polled progress.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"crmconsole/internal/config"
	"crmconsole/internal/metrics"
	"crmconsole/internal/metrics/datadog"
	"crmconsole/internal/metrics/prompush"
	"crmconsole/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.HubSpotToken == "" {
		log.Fatal("HUBSPOT_ACCESS_TOKEN (or -hubspot_token) is required")
	}

	if err := installMetrics(cfg); err != nil {
		log.Fatalf("metrics backend: %v", err)
	}
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics flush: %v", err)
		}
	}()

	srv := server.New(cfg)
	log.Printf("listening on %s", cfg.Addr)
	if err := srv.Router().Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// installMetrics wires the configured metrics backend, leaving the no-op
// default in place when none is selected.
func installMetrics(cfg *config.Config) error {
	switch cfg.MetricsBackend {
	case "":
		return nil
	case "prometheus":
		b, err := prompush.NewBackend("crmconsole", cfg.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      cfg.DogstatsdAddr,
			Namespace: "crmconsole",
		})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	default:
		log.Printf("unknown metrics backend %q, metrics disabled", cfg.MetricsBackend)
	}
	return nil
}
