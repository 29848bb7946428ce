package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/elephant-xyz/mvl-monitoring/internal/awsapi"
	"github.com/elephant-xyz/mvl-monitoring/internal/resolver"
	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// ClientFactory builds the per-account AWS clients. Injected so tests can
// substitute fakes without real credentials.
type ClientFactory func(ctx context.Context, acct types.Account, region string) (*awsapi.Clients, error)

// AccountWorker collects the completeness metric for single accounts:
// resolve the log group once, then run one query job per window. Windows
// are processed sequentially because they all draw on the same account's
// Insights quota.
type AccountWorker struct {
	config  *Config
	clients ClientFactory
}

// NewAccountWorker creates a new account worker
func NewAccountWorker(config *Config, clients ClientFactory) *AccountWorker {
	return &AccountWorker{
		config:  config,
		clients: clients,
	}
}

// Process produces the account's terminal result. It never returns an
// error: a resolution failure yields a result with zero records and one
// account-level failure, and a failed window is recorded and skipped so
// the remaining windows still run.
func (w *AccountWorker) Process(ctx context.Context, acct types.Account, windows []types.TimeWindow, progress *Progress) *types.AccountResult {
	result := &types.AccountResult{AccountID: acct.AccountID}
	defer progress.Accounts.Add(1)

	clients, err := w.clients(ctx, acct, w.config.Region)
	if err != nil {
		log.Printf("WARN account %s: skipping, %v", acct.AccountID, err)
		result.Failures = append(result.Failures, types.Failure{
			AccountID: acct.AccountID,
			Reason:    fmt.Sprintf("build clients: %v", err),
		})
		progress.Failures.Add(1)
		return result
	}

	logGroup, err := resolver.New(clients.CloudFormation, w.config.StackName, w.config.OutputKey).Resolve(ctx)
	if err != nil {
		log.Printf("WARN account %s: skipping, %v", acct.AccountID, err)
		result.Failures = append(result.Failures, types.Failure{
			AccountID: acct.AccountID,
			Reason:    fmt.Sprintf("resolve log group: %v", err),
		})
		progress.Failures.Add(1)
		return result
	}

	log.Printf("account %s using log group %s", acct.AccountID, logGroup)

	limiter := rate.NewLimiter(w.config.SubmitRate, 1)

	for _, window := range windows {
		job := NewQueryJob(w.config, clients.Logs, limiter, acct.AccountID, logGroup, window)

		records, err := job.Run(ctx)
		progress.Windows.Add(1)
		if err != nil {
			log.Printf("WARN account %s window %s: %v", acct.AccountID, window.End.Format(time.RFC3339), err)
			win := window
			result.Failures = append(result.Failures, types.Failure{
				AccountID: acct.AccountID,
				Window:    &win,
				Reason:    err.Error(),
			})
			progress.Failures.Add(1)
			continue
		}

		result.Records = append(result.Records, records...)
		progress.Records.Add(int64(len(records)))
	}

	return result
}
