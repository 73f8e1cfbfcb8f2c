package model

import "time"

// Severity classifies how badly an anomaly deviates from expected test health.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AnomalyRecord represents one rule-triggered deviation for a single run.
type AnomalyRecord struct {
	// Severity of the deviation
	Severity Severity `json:"severity"`
	// Stable identifier of the rule that fired (e.g. "low-pass-rate")
	Code string `json:"code"`
	// Human-readable explanation including measured value and threshold
	Message string `json:"message"`
}

// Direction classifies the rolling quality trend.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionStable    Direction = "stable"
	DirectionDegrading Direction = "degrading"
)

// TrendResult is a read-derived view over the most recent history entries.
// It is recomputed on every invocation and never persisted as mutable state.
type TrendResult struct {
	// Number of history entries the averages cover
	WindowSize int `json:"window_size"`
	// Arithmetic mean pass rate over the window (0..1)
	AvgPassRate float64 `json:"avg_pass_rate"`
	// Arithmetic mean duration over the window in milliseconds
	AvgDurationMS float64 `json:"avg_duration_ms"`
	// Quality direction derived from the latest entry vs the window average
	Direction Direction `json:"direction"`
}

// Priority orders recommendations, critical first.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityInfo     Priority = "info"
)

// priorityRank maps priorities to sort order, lowest rank first.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
	PriorityInfo:     4,
}

// Rank returns the sort position of the priority; unknown priorities sort last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// RecommendationRecord is one actionable statement derived from anomalies
// or the trend direction.
type RecommendationRecord struct {
	// Priority derived from the triggering anomaly severity or trend
	Priority Priority `json:"priority"`
	// Anomaly code or trend marker that produced this recommendation
	Code string `json:"code"`
	// Actionable statement
	Text string `json:"text"`
}

// Report is the terminal artifact produced once when a session closes.
// CI tooling reads recommendations and the session pass rates from it.
type Report struct {
	// Snapshot of the closed session, including all runs and anomalies
	Session Session `json:"session"`
	// Trend computed from the history log at close time
	Trend TrendResult `json:"trend"`
	// Prioritized, deduplicated recommendations
	Recommendations []RecommendationRecord `json:"recommendations"`
	// Timestamp when the report was generated
	GeneratedAt time.Time `json:"generated_at"`
}
