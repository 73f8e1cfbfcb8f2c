// Package anomaly evaluates run metrics against a fixed rule set.
package anomaly

import (
	"fmt"

	"github.com/testpulse/testpulse/extract"
	"github.com/testpulse/testpulse/model"
)

// Fixed thresholds; there is no adaptive thresholding.
const (
	// MinPassRate is the pass rate below which low-pass-rate fires.
	MinPassRate = 0.90
	// SlowRunMS is the duration above which slow-run fires (5 minutes).
	SlowRunMS = 300000
)

// Stable rule identifiers.
const (
	CodeAllFailed          = "all-failed"
	CodeLowPassRate        = "low-pass-rate"
	CodeSlowRun            = "slow-run"
	CodeErrorsPresent      = "errors-present"
	CodeParseInconsistency = "parse-inconsistency"
	CodeDeprecationWarning = "deprecation-warning"
)

// Rule is one independently evaluated detection. Eval returns the anomaly
// message when the rule fires, or "" when it does not. Rules never
// short-circuit each other; prior carries the session's earlier runs for
// rules that compare against recent history.
type Rule struct {
	Code     string
	Severity model.Severity
	Eval     func(run model.RunMetrics, prior []model.RunMetrics, markers extract.MarkerSet) string
}

// Rules returns the fixed rule table in evaluation order.
func Rules() []Rule {
	return []Rule{
		{
			Code:     CodeAllFailed,
			Severity: model.SeverityCritical,
			Eval: func(run model.RunMetrics, _ []model.RunMetrics, _ extract.MarkerSet) string {
				if run.Total > 0 && run.Passed == 0 {
					return fmt.Sprintf("all %d tests failed (0 passed)", run.Total)
				}
				return ""
			},
		},
		{
			Code:     CodeLowPassRate,
			Severity: model.SeverityHigh,
			Eval: func(run model.RunMetrics, _ []model.RunMetrics, _ extract.MarkerSet) string {
				if run.Total > 0 && run.PassRate() < MinPassRate {
					return fmt.Sprintf("pass rate %.0f%% below %.0f%% threshold (%d/%d passed)",
						run.PassRate()*100, MinPassRate*100, run.Passed, run.Total)
				}
				return ""
			},
		},
		{
			Code:     CodeSlowRun,
			Severity: model.SeverityMedium,
			Eval: func(run model.RunMetrics, _ []model.RunMetrics, _ extract.MarkerSet) string {
				if run.DurationMS > SlowRunMS {
					return fmt.Sprintf("run took %dms, over the %dms threshold", run.DurationMS, int64(SlowRunMS))
				}
				return ""
			},
		},
		{
			Code:     CodeErrorsPresent,
			Severity: model.SeverityMedium,
			Eval: func(run model.RunMetrics, _ []model.RunMetrics, markers extract.MarkerSet) string {
				if run.Errored > 0 {
					return fmt.Sprintf("%d errored tests reported", run.Errored)
				}
				if markers.ContainsError(run.RawExcerpt) {
					return "error marker present in output but no errored tests counted"
				}
				return ""
			},
		},
		{
			Code:     CodeParseInconsistency,
			Severity: model.SeverityMedium,
			Eval: func(run model.RunMetrics, _ []model.RunMetrics, _ extract.MarkerSet) string {
				if !run.Consistent() {
					return fmt.Sprintf("reported total %d does not match passed+failed+errored = %d",
						run.Total, run.Passed+run.Failed+run.Errored)
				}
				return ""
			},
		},
		{
			Code:     CodeDeprecationWarning,
			Severity: model.SeverityLow,
			Eval: func(run model.RunMetrics, _ []model.RunMetrics, _ extract.MarkerSet) string {
				if run.Warnings > 0 {
					return fmt.Sprintf("%d warning markers found in output", run.Warnings)
				}
				return ""
			},
		},
	}
}

// Detect evaluates every rule against the run and returns the anomalies in
// rule order. A run may trigger zero, one, or many; duplicates are not
// collapsed here (the recommendation engine dedupes by code).
func Detect(run model.RunMetrics, prior []model.RunMetrics, markers extract.MarkerSet) []model.AnomalyRecord {
	var records []model.AnomalyRecord
	for _, rule := range Rules() {
		msg := rule.Eval(run, prior, markers)
		if msg == "" {
			continue
		}
		records = append(records, model.AnomalyRecord{
			Severity: rule.Severity,
			Code:     rule.Code,
			Message:  msg,
		})
	}
	return records
}
