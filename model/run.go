package model

import "time"

// RunMetrics represents the parsed result of a single test-tool invocation.
// Records are created once by the extractor and never mutated.
type RunMetrics struct {
	// Timestamp when the run completed
	Timestamp time.Time `json:"timestamp"`
	// Total tests reported by the runner
	Total int `json:"total"`
	// Tests that passed
	Passed int `json:"passed"`
	// Tests that failed
	Failed int `json:"failed"`
	// Tests that errored (infrastructure failures, not assertions)
	Errored int `json:"errored"`
	// Wall-clock duration of the run in milliseconds
	DurationMS int64 `json:"duration_ms"`
	// Count of warning markers found in the output
	Warnings int `json:"warnings"`
	// Exit code of the test runner; recorded verbatim, never overrides parsed counts
	ExitCode int `json:"exit_code"`
	// Bounded snippet of the raw output retained for diagnostics
	RawExcerpt string `json:"raw_excerpt,omitempty"`
}

// PassRate returns passed/total, or 0 when no tests were counted.
func (r RunMetrics) PassRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Consistent reports whether the count invariant total == passed+failed+errored holds.
func (r RunMetrics) Consistent() bool {
	return r.Total == r.Passed+r.Failed+r.Errored
}

// HistoricalEntry is one line in the append-only history log, written
// exactly once per recorded run.
type HistoricalEntry struct {
	// Timestamp when the run was recorded
	Timestamp time.Time `json:"timestamp"`
	// Pass rate of the run (0..1)
	PassRate float64 `json:"pass_rate"`
	// Duration of the run in milliseconds
	DurationMS int64 `json:"duration_ms"`
	// Number of anomalies detected for the run
	AnomalyCount int `json:"anomaly_count"`
}
