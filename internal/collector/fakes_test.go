package collector_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"golang.org/x/time/rate"

	"github.com/elephant-xyz/mvl-monitoring/internal/collector"
)

// testConfig returns a config tuned for fast tests
func testConfig() *collector.Config {
	config := collector.DefaultConfig()
	config.PollInterval = time.Millisecond
	config.MaxPolls = 5
	config.SubmitRate = rate.Inf
	return config
}

// fakeCloudFormation returns a canned DescribeStacks response
type fakeCloudFormation struct {
	out *cloudformation.DescribeStacksOutput
	err error
}

func (f *fakeCloudFormation) DescribeStacks(_ context.Context, _ *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	return f.out, f.err
}

func stackWithOutput(key, value string) *cloudformation.DescribeStacksOutput {
	return &cloudformation.DescribeStacksOutput{
		Stacks: []cfntypes.Stack{{
			StackName: aws.String("elephant-oracle-node"),
			Outputs: []cfntypes.Output{{
				OutputKey:   aws.String(key),
				OutputValue: aws.String(value),
			}},
		}},
	}
}

// queryScript drives one fake query: statuses are consumed one per poll
// with the last value repeating, and results are returned on Complete.
type queryScript struct {
	statuses []cwltypes.QueryStatus
	results  [][]cwltypes.ResultField
	getErr   error
	polls    int
}

// fakeLogs hands out scripted queries in submission order. The script
// callback receives the 1-based submission number so tests can fail a
// specific window.
type fakeLogs struct {
	mu       sync.Mutex
	startErr error
	script   func(n int) *queryScript
	started  int
	queries  map[string]*queryScript
}

func newFakeLogs(script func(n int) *queryScript) *fakeLogs {
	return &fakeLogs{
		script:  script,
		queries: make(map[string]*queryScript),
	}
}

func (f *fakeLogs) StartQuery(_ context.Context, _ *cloudwatchlogs.StartQueryInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartQueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}

	f.started++
	id := fmt.Sprintf("q-%d", f.started)
	f.queries[id] = f.script(f.started)

	return &cloudwatchlogs.StartQueryOutput{QueryId: aws.String(id)}, nil
}

func (f *fakeLogs) GetQueryResults(_ context.Context, params *cloudwatchlogs.GetQueryResultsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetQueryResultsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.queries[aws.ToString(params.QueryId)]
	if !ok {
		return nil, fmt.Errorf("unknown query %s", aws.ToString(params.QueryId))
	}
	if q.getErr != nil {
		return nil, q.getErr
	}

	i := q.polls
	if i >= len(q.statuses) {
		i = len(q.statuses) - 1
	}
	q.polls++

	out := &cloudwatchlogs.GetQueryResultsOutput{Status: q.statuses[i]}
	if out.Status == cwltypes.QueryStatusComplete {
		out.Results = q.results
	}
	return out, nil
}

func resultRow(county, avg string) []cwltypes.ResultField {
	return []cwltypes.ResultField{
		{Field: aws.String("county"), Value: aws.String(county)},
		{Field: aws.String("avg_global_completeness"), Value: aws.String(avg)},
	}
}

// completeImmediately scripts every query to succeed on the first poll
// with a single county row.
func completeImmediately(county, avg string) func(n int) *queryScript {
	return func(int) *queryScript {
		return &queryScript{
			statuses: []cwltypes.QueryStatus{cwltypes.QueryStatusComplete},
			results:  [][]cwltypes.ResultField{resultRow(county, avg)},
		}
	}
}
