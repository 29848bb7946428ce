package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/elephant-xyz/mvl-monitoring/internal/accounts"
	"github.com/elephant-xyz/mvl-monitoring/internal/awsapi"
	"github.com/elephant-xyz/mvl-monitoring/internal/collector"
	"github.com/elephant-xyz/mvl-monitoring/internal/export"
	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

func main() {
	var (
		rangeHours   = pflag.Int("range-hours", 24, "how many hours to look back")
		granularity  = pflag.Int("granularity-minutes", 60, "size of each time window in minutes")
		accountsFile = pflag.String("accounts-file", "accounts-dev.yaml", "YAML file with per-account credentials")
		maxWorkers   = pflag.Int("max-workers", 6, "number of accounts processed in parallel")
		region       = pflag.String("region", "us-east-1", "AWS region of the oracle-node stacks")
		outDir       = pflag.String("out-dir", ".", "directory for the CSV and chart outputs")
	)
	pflag.Parse()

	if *rangeHours <= 0 || *granularity <= 0 {
		log.Fatalf("range-hours and granularity-minutes must be positive (got %d, %d)", *rangeHours, *granularity)
	}

	config := collector.DefaultConfig()
	config.Region = *region
	config.WindowCount = (*rangeHours * 60) / *granularity
	config.WindowWidth = time.Duration(*granularity) * time.Minute
	config.MaxWorkers = *maxWorkers

	log.Printf("configuration: range=%dh granularity=%dm windows=%d workers=%d",
		*rangeHours, *granularity, config.WindowCount, config.MaxWorkers)

	accts, err := accounts.Load(*accountsFile)
	if err != nil {
		log.Fatalf("Failed to load accounts: %v", err)
	}
	log.Printf("loaded %d accounts from %s", len(accts), *accountsFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := collector.NewOrchestrator(config, awsapi.NewClients)
	progress := &collector.Progress{}

	now := time.Now().UTC().Truncate(time.Second)
	dataset, failures, err := orch.Run(ctx, now, accts, progress)
	if err != nil {
		log.Fatalf("Collection run failed: %v", err)
	}

	for _, f := range failures {
		if f.Window != nil {
			log.Printf("WARN account %s window %s .. %s: %s",
				f.AccountID, f.Window.Start.Format(time.RFC3339), f.Window.End.Format(time.RFC3339), f.Reason)
		} else {
			log.Printf("WARN account %s: %s", f.AccountID, f.Reason)
		}
	}

	log.Printf("run complete: %s", progress)

	runID := types.GenerateRunID()

	csvPath := filepath.Join(*outDir, fmt.Sprintf("metrics_%s.csv", runID))
	if err := export.WriteCSV(csvPath, dataset); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	log.Printf("results saved to %s", csvPath)

	chartPath := filepath.Join(*outDir, fmt.Sprintf("metrics_%s.png", runID))
	if err := export.WriteChart(chartPath, dataset); err != nil {
		log.Printf("WARN failed to create visualization: %v", err)
	} else {
		log.Printf("visualization saved to %s", chartPath)
	}
}
