package types

import "time"

// QueryState represents the current state of an Insights query job
type QueryState string

const (
	QueryStateCreated   QueryState = "CREATED"
	QueryStateSubmitted QueryState = "SUBMITTED"
	QueryStatePolling   QueryState = "POLLING"
	QueryStateSucceeded QueryState = "SUCCEEDED"
	QueryStateFailed    QueryState = "FAILED"
	QueryStateTimedOut  QueryState = "TIMED_OUT"
)

// Terminal reports whether the state admits no further transitions
func (s QueryState) Terminal() bool {
	switch s {
	case QueryStateSucceeded, QueryStateFailed, QueryStateTimedOut:
		return true
	}
	return false
}

// TimeWindow is one query interval. End - Start equals the run granularity;
// consecutive windows in a generated sequence are contiguous, with index 0
// covering the most recent interval.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}
