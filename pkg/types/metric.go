package types

import "time"

// MetricRecord is one measured value: the average completeness for a county
// over one window, attributed to the account that produced the logs. The
// timestamp is the window's end instant.
type MetricRecord struct {
	AccountID string
	County    string
	Timestamp time.Time
	Value     float64
}

// Failure describes one unit of work that produced no data. Window is nil
// when the whole account failed (resolution or client construction);
// otherwise the failure is scoped to that single window.
type Failure struct {
	AccountID string
	Window    *TimeWindow
	Reason    string
}

// AccountResult is everything one account contributed to the run: the
// records collected plus any failures encountered along the way. The worker
// owns it until the orchestrator joins; after that it is never mutated.
type AccountResult struct {
	AccountID string
	Records   []MetricRecord
	Failures  []Failure
}

// Dataset is the concatenation of every account's records. Order is not
// significant; exporters sort as needed.
type Dataset []MetricRecord
