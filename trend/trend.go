// Package trend computes the rolling quality direction from history entries.
package trend

import (
	"gonum.org/v1/gonum/stat"

	"github.com/testpulse/testpulse/model"
)

// DefaultWindow is the number of most-recent history entries the averages
// cover when no window is configured; shorter history shrinks the window.
const DefaultWindow = 10

// Tolerance is the band around the window average within which the latest
// pass rate counts as stable (2 percentage points).
const Tolerance = 0.02

// Analyze computes a TrendResult over the last window entries, which must
// be in write order. It is a pure read: with fewer than 2 entries the
// direction is stable by definition and the averages equal the single
// entry, or zero with none. A non-positive window falls back to
// DefaultWindow.
func Analyze(entries []model.HistoricalEntry, window int) model.TrendResult {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(entries) > window {
		entries = entries[len(entries)-window:]
	}

	result := model.TrendResult{
		WindowSize: len(entries),
		Direction:  model.DirectionStable,
	}
	if len(entries) == 0 {
		return result
	}

	passRates := make([]float64, len(entries))
	durations := make([]float64, len(entries))
	for i, e := range entries {
		passRates[i] = e.PassRate
		durations[i] = float64(e.DurationMS)
	}

	result.AvgPassRate = stat.Mean(passRates, nil)
	result.AvgDurationMS = stat.Mean(durations, nil)

	if len(entries) < 2 {
		return result
	}

	latest := entries[len(entries)-1].PassRate
	switch {
	case latest > result.AvgPassRate+Tolerance:
		result.Direction = model.DirectionImproving
	case latest < result.AvgPassRate-Tolerance:
		result.Direction = model.DirectionDegrading
	}
	return result
}
