package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// Progress tallies run-level counters. It is threaded through the
// orchestrator explicitly rather than living in a package global, and is
// reported once when the run finishes.
type Progress struct {
	Accounts atomic.Int64
	Windows  atomic.Int64
	Records  atomic.Int64
	Failures atomic.Int64
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return fmt.Sprintf("%d accounts, %d windows queried, %d records, %d failures",
		p.Accounts.Load(), p.Windows.Load(), p.Records.Load(), p.Failures.Load())
}

// Orchestrator fans account workers out over a bounded pool and joins
// every result into one dataset. One account being slow or broken never
// blocks or cancels the others; the run always completes with whatever
// data it could collect.
type Orchestrator struct {
	config  *Config
	clients ClientFactory
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(config *Config, clients ClientFactory) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		config:  config,
		clients: clients,
	}
}

// Run collects metrics for every account over the trailing time range
// anchored at now, waiting for all workers before merging. It returns the
// merged dataset and the per-account/window failure list for reporting.
func (o *Orchestrator) Run(ctx context.Context, now time.Time, accts []types.Account, progress *Progress) (types.Dataset, []types.Failure, error) {
	windows := Windows(now, o.config.WindowCount, o.config.WindowWidth)
	worker := NewAccountWorker(o.config, o.clients)

	// One slot per account; workers never return errors, so the group is
	// used purely as a bounded waitgroup.
	results := make([]*types.AccountResult, len(accts))

	g := new(errgroup.Group)
	g.SetLimit(o.config.MaxWorkers)
	for i, acct := range accts {
		g.Go(func() error {
			results[i] = worker.Process(ctx, acct, windows, progress)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("join account workers: %w", err)
	}

	var dataset types.Dataset
	var failures []types.Failure
	for _, r := range results {
		dataset = append(dataset, r.Records...)
		failures = append(failures, r.Failures...)
	}

	return dataset, failures, nil
}
