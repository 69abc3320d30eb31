package pipeline

import "time"

// Reporter receives human-readable stage progress. It is a thin
// presentation seam: the console implementation lives with the CLI and
// tests run with the no-op.
type Reporter interface {
	// Stage announces that stage num of total is starting.
	Stage(num, total int, description string)
	// StageDone reports a completed stage with its elapsed time.
	StageDone(message string, elapsed time.Duration)
}

// NopReporter discards all progress output.
type NopReporter struct{}

func (NopReporter) Stage(int, int, string) {}

func (NopReporter) StageDone(string, time.Duration) {}
