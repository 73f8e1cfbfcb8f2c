// Package recommend maps anomalies and the trend direction to a
// prioritized, deduplicated recommendation list.
package recommend

import (
	"fmt"
	"sort"

	"github.com/testpulse/testpulse/anomaly"
	"github.com/testpulse/testpulse/model"
)

// Trend-derived recommendation codes.
const (
	CodeTrendDegrading = "trend-degrading"
	CodeTrendImproving = "trend-improving"
	CodeSuiteHealthy   = "suite-healthy"
)

// template is the single recommendation emitted for an anomaly code.
type template struct {
	priority model.Priority
	text     string
}

// templates maps each anomaly code to exactly one recommendation.
var templates = map[string]template{
	anomaly.CodeAllFailed: {
		priority: model.PriorityCritical,
		text:     "Every test failed; halt merges and inspect the failure output before rerunning.",
	},
	anomaly.CodeLowPassRate: {
		priority: model.PriorityHigh,
		text:     "Pass rate dropped below 90%; triage the failing tests before they accumulate.",
	},
	anomaly.CodeSlowRun: {
		priority: model.PriorityMedium,
		text:     "Test run exceeded 5 minutes; profile the slowest tests or split the suite.",
	},
	anomaly.CodeErrorsPresent: {
		priority: model.PriorityMedium,
		text:     "Errors were reported outside normal test failures; check the harness and environment.",
	},
	anomaly.CodeParseInconsistency: {
		priority: model.PriorityMedium,
		text:     "Reported test counts do not add up; verify the runner output against the extraction rules.",
	},
	anomaly.CodeDeprecationWarning: {
		priority: model.PriorityLow,
		text:     "Deprecation warnings detected; schedule the dependency updates they point at.",
	},
}

// Build produces the ordered recommendation sequence for the given
// anomalies and trend. Duplicate anomaly codes collapse to one
// recommendation, keeping the position of the first occurrence; the final
// order is priority descending with detection order preserved within equal
// priority.
func Build(anomalies []model.AnomalyRecord, tr model.TrendResult) []model.RecommendationRecord {
	var recs []model.RecommendationRecord
	seen := make(map[string]bool)

	for _, a := range anomalies {
		if seen[a.Code] {
			continue
		}
		seen[a.Code] = true

		tmpl, ok := templates[a.Code]
		if !ok {
			// A rule without a template still surfaces, carried by
			// its own severity.
			tmpl = template{priority: model.Priority(a.Severity), text: a.Message}
		}
		recs = append(recs, model.RecommendationRecord{
			Priority: tmpl.priority,
			Code:     a.Code,
			Text:     tmpl.text,
		})
	}

	switch tr.Direction {
	case model.DirectionDegrading:
		recs = append(recs, model.RecommendationRecord{
			Priority: model.PriorityMedium,
			Code:     CodeTrendDegrading,
			Text: fmt.Sprintf("Pass rate is trending down against the last %d runs (avg %.0f%%); review recent changes.",
				tr.WindowSize, tr.AvgPassRate*100),
		})
	case model.DirectionImproving:
		recs = append(recs, model.RecommendationRecord{
			Priority: model.PriorityInfo,
			Code:     CodeTrendImproving,
			Text: fmt.Sprintf("Pass rate is trending up against the last %d runs; keep it going.",
				tr.WindowSize),
		})
	default:
		if len(recs) == 0 {
			return []model.RecommendationRecord{{
				Priority: model.PriorityInfo,
				Code:     CodeSuiteHealthy,
				Text:     "Suite is healthy: stable trend and no anomalies in this session.",
			}}
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	return recs
}
