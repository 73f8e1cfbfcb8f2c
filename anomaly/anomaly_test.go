package anomaly

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/testpulse/testpulse/extract"
	"github.com/testpulse/testpulse/model"
)

func codes(records []model.AnomalyRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Code)
	}
	return out
}

func TestDetect(t *testing.T) {
	markers := extract.DefaultMarkers()

	tests := []struct {
		name string
		run  model.RunMetrics
		want []string
	}{
		{
			name: "clean run",
			run:  model.RunMetrics{Total: 45, Passed: 45, DurationMS: 2300},
			want: nil,
		},
		{
			name: "all failed",
			run:  model.RunMetrics{Total: 10, Failed: 10, DurationMS: 100},
			want: []string{CodeAllFailed, CodeLowPassRate},
		},
		{
			name: "low pass rate and slow run",
			run:  model.RunMetrics{Total: 13, Passed: 3, Failed: 10, DurationMS: 400000},
			want: []string{CodeLowPassRate, CodeSlowRun},
		},
		{
			name: "errored tests counted",
			run:  model.RunMetrics{Total: 9, Passed: 8, Errored: 1, DurationMS: 100},
			want: []string{CodeLowPassRate, CodeErrorsPresent},
		},
		{
			name: "uncounted error marker in excerpt",
			run: model.RunMetrics{
				Total: 5, Passed: 5, DurationMS: 100,
				RawExcerpt: "5 passed\npanic: runtime error",
			},
			want: []string{CodeErrorsPresent},
		},
		{
			name: "parse inconsistency",
			run:  model.RunMetrics{Total: 20, Passed: 5, Failed: 3, DurationMS: 100},
			want: []string{CodeLowPassRate, CodeParseInconsistency},
		},
		{
			name: "deprecation warnings",
			run:  model.RunMetrics{Total: 5, Passed: 5, Warnings: 2, DurationMS: 100},
			want: []string{CodeDeprecationWarning},
		},
		{
			name: "zero counts trigger nothing count-based",
			run:  model.RunMetrics{},
			want: nil,
		},
		{
			name: "boundary pass rate exactly 90 percent",
			run:  model.RunMetrics{Total: 10, Passed: 9, Failed: 1, DurationMS: 100},
			want: nil,
		},
		{
			name: "boundary duration exactly at threshold",
			run:  model.RunMetrics{Total: 1, Passed: 1, DurationMS: SlowRunMS},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.run, nil, markers)
			require.Equal(t, tt.want, codes(got))
		})
	}
}

func TestDetect_ParseInconsistencyFiresExactlyOnce(t *testing.T) {
	run := model.RunMetrics{Total: 7, Passed: 7, Failed: 1, DurationMS: 10}
	got := Detect(run, nil, extract.DefaultMarkers())

	count := 0
	for _, r := range got {
		if r.Code == CodeParseInconsistency {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestDetect_SeveritiesAndMessages(t *testing.T) {
	run := model.RunMetrics{Total: 10, Failed: 10, DurationMS: 400000}
	got := Detect(run, nil, extract.DefaultMarkers())

	require.Equal(t, model.SeverityCritical, got[0].Severity)
	require.Contains(t, got[0].Message, "10")
	require.Equal(t, model.SeverityHigh, got[1].Severity)
	require.Contains(t, got[1].Message, "90%")
	require.Equal(t, model.SeverityMedium, got[2].Severity)
	require.Contains(t, got[2].Message, "300000")
}
