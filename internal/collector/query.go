package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"golang.org/x/time/rate"

	"github.com/elephant-xyz/mvl-monitoring/internal/awsapi"
	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// insightsQuery averages the completeness field per county over the queried
// window. The msg filter pins it to the one structured log line the mirror
// validator emits for this metric.
const insightsQuery = `fields
    message.county as county,
    message.global_completeness as completeness,
    message.msg as msg
| filter msg = "mvl_completeness_metric"
| stats avg(completeness) as avg_global_completeness by county`

const (
	fieldCounty  = "county"
	fieldAverage = "avg_global_completeness"
	resultLimit  = 10000
)

var (
	// ErrTimedOut is returned when a query never completed within the poll ceiling
	ErrTimedOut = errors.New("query timed out")

	// ErrQueryFailed is returned when the provider reports the query failed or was cancelled
	ErrQueryFailed = errors.New("query failed")
)

// QueryJob drives one Insights query for a single (account, window) pair
// from submission to a terminal state. A job is never reused: once terminal
// it stays terminal, and a retry means constructing a fresh job.
type QueryJob struct {
	client    awsapi.LogsAPI
	limiter   *rate.Limiter
	accountID string
	logGroup  string
	window    types.TimeWindow

	pollInterval time.Duration
	maxPolls     int

	state    types.QueryState
	queryID  string
	attempts int
}

// NewQueryJob creates a job in the Created state. The limiter paces query
// submissions against the account's Insights quota and may be nil.
func NewQueryJob(config *Config, client awsapi.LogsAPI, limiter *rate.Limiter, accountID, logGroup string, window types.TimeWindow) *QueryJob {
	return &QueryJob{
		client:       client,
		limiter:      limiter,
		accountID:    accountID,
		logGroup:     logGroup,
		window:       window,
		pollInterval: config.PollInterval,
		maxPolls:     config.MaxPolls,
		state:        types.QueryStateCreated,
	}
}

// State returns the job's current state
func (j *QueryJob) State() types.QueryState { return j.state }

// Attempts returns the number of polls issued so far
func (j *QueryJob) Attempts() int { return j.attempts }

// Run drives the job to a terminal state and returns the parsed records.
// The error is non-nil exactly when the terminal state is not Succeeded.
// A window with no matching log lines succeeds with zero records.
func (j *QueryJob) Run(ctx context.Context) ([]types.MetricRecord, error) {
	if j.state != types.QueryStateCreated {
		return nil, fmt.Errorf("query job already driven (state %s)", j.state)
	}

	if err := j.submit(ctx); err != nil {
		j.state = types.QueryStateFailed
		return nil, err
	}

	return j.poll(ctx)
}

// submit starts the query and moves the job to Submitted
func (j *QueryJob) submit(ctx context.Context) error {
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for submit slot: %w", err)
		}
	}

	resp, err := j.client.StartQuery(ctx, &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(j.logGroup),
		StartTime:    aws.Int64(j.window.Start.Unix()),
		EndTime:      aws.Int64(j.window.End.Unix()),
		QueryString:  aws.String(insightsQuery),
		Limit:        aws.Int32(resultLimit),
	})
	if err != nil {
		return fmt.Errorf("start query for %s: %w", j.logGroup, err)
	}

	j.queryID = aws.ToString(resp.QueryId)
	j.state = types.QueryStateSubmitted
	return nil
}

// poll checks the query status until it reaches a terminal state or the
// poll ceiling is hit. Bounded: at most maxPolls status checks.
func (j *QueryJob) poll(ctx context.Context) ([]types.MetricRecord, error) {
	j.state = types.QueryStatePolling

	for j.attempts < j.maxPolls {
		j.attempts++

		resp, err := j.client.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
			QueryId: aws.String(j.queryID),
		})
		if err != nil {
			j.state = types.QueryStateFailed
			return nil, fmt.Errorf("get query results %s: %w", j.queryID, err)
		}

		switch resp.Status {
		case cwltypes.QueryStatusComplete:
			j.state = types.QueryStateSucceeded
			return j.parseResults(resp.Results), nil

		case cwltypes.QueryStatusFailed, cwltypes.QueryStatusCancelled:
			j.state = types.QueryStateFailed
			return nil, fmt.Errorf("query %s ended with status %s: %w", j.queryID, resp.Status, ErrQueryFailed)
		}

		select {
		case <-ctx.Done():
			j.state = types.QueryStateFailed
			return nil, fmt.Errorf("poll query %s: %w", j.queryID, ctx.Err())
		case <-time.After(j.pollInterval):
		}
	}

	j.state = types.QueryStateTimedOut
	return nil, fmt.Errorf("query %s still running after %d polls: %w", j.queryID, j.attempts, ErrTimedOut)
}

// parseResults converts Insights result rows into metric records, one per
// county. Rows missing a county or carrying an unparseable average are
// skipped with a warning.
func (j *QueryJob) parseResults(results [][]cwltypes.ResultField) []types.MetricRecord {
	records := make([]types.MetricRecord, 0, len(results))

	for _, row := range results {
		fields := make(map[string]string, len(row))
		for _, f := range row {
			fields[aws.ToString(f.Field)] = aws.ToString(f.Value)
		}

		county := fields[fieldCounty]
		avg, ok := fields[fieldAverage]
		if county == "" || !ok {
			continue
		}

		value, err := strconv.ParseFloat(avg, 64)
		if err != nil {
			log.Printf("WARN account %s: could not parse avg value %q for county %s", j.accountID, avg, county)
			continue
		}

		records = append(records, types.MetricRecord{
			AccountID: j.accountID,
			County:    county,
			Timestamp: j.window.End.UTC(),
			Value:     value,
		})
	}

	return records
}
