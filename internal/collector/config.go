package collector

import (
	"time"

	"golang.org/x/time/rate"
)

// Config holds collector configuration
type Config struct {
	Region       string
	StackName    string
	OutputKey    string
	WindowCount  int
	WindowWidth  time.Duration
	MaxWorkers   int
	PollInterval time.Duration
	MaxPolls     int
	SubmitRate   rate.Limit
}

// DefaultConfig returns default collector configuration: a trailing 24-hour
// backfill at one-hour granularity against the oracle-node stacks.
func DefaultConfig() *Config {
	return &Config{
		Region:       "us-east-1",
		StackName:    "elephant-oracle-node",
		OutputKey:    "WorkflowMirrorValidatorLogGroupName",
		WindowCount:  24,
		WindowWidth:  time.Hour,
		MaxWorkers:   6,
		PollInterval: time.Second,
		MaxPolls:     30,
		SubmitRate:   rate.Limit(2),
	}
}
