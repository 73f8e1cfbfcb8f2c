package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_CleanRun(t *testing.T) {
	m := Extract("45 passed, 0 failed, 0 errors in 2300ms", 0, DefaultMarkers())

	require.Equal(t, 45, m.Total)
	require.Equal(t, 45, m.Passed)
	require.Equal(t, 0, m.Failed)
	require.Equal(t, 0, m.Errored)
	require.Equal(t, int64(2300), m.DurationMS)
	require.Equal(t, 0, m.Warnings)
	require.True(t, m.Consistent())
}

func TestExtract_FailingSlowRun(t *testing.T) {
	m := Extract("3 passed, 10 failed, 0 errors in 400000ms", 1, DefaultMarkers())

	require.Equal(t, 13, m.Total)
	require.Equal(t, 3, m.Passed)
	require.Equal(t, 10, m.Failed)
	require.Equal(t, 0, m.Errored)
	require.Equal(t, int64(400000), m.DurationMS)
	require.Equal(t, 1, m.ExitCode)
}

func TestExtract_ExplicitTotalKeptEvenWhenInconsistent(t *testing.T) {
	// The extractor emits counts as parsed; the mismatch is the anomaly
	// detector's job.
	m := Extract("20 tests, 5 passed, 3 failed in 100ms", 0, DefaultMarkers())

	require.Equal(t, 20, m.Total)
	require.Equal(t, 5, m.Passed)
	require.Equal(t, 3, m.Failed)
	require.False(t, m.Consistent())
}

func TestExtract_EmptyInput(t *testing.T) {
	m := Extract("", 3, DefaultMarkers())

	require.Equal(t, 0, m.Total)
	require.Equal(t, 0, m.Passed)
	require.Equal(t, 0, m.Failed)
	require.Equal(t, 0, m.Errored)
	require.Equal(t, int64(0), m.DurationMS)
	// Exit status is recorded but never turned into counts.
	require.Equal(t, 3, m.ExitCode)
	require.Empty(t, m.RawExcerpt)
}

func TestExtract_GarbageInput(t *testing.T) {
	m := Extract("no recognizable markers whatsoever", 0, DefaultMarkers())

	require.Equal(t, 0, m.Total)
	require.Equal(t, "no recognizable markers whatsoever", m.RawExcerpt)
}

func TestExtract_WarningCountMarker(t *testing.T) {
	m := Extract("10 passed, 0 failed, 0 errors, 4 warnings in 50ms", 0, DefaultMarkers())

	require.Equal(t, 4, m.Warnings)
}

func TestExtract_WarningMarkerLines(t *testing.T) {
	raw := strings.Join([]string{
		"10 passed, 0 failed, 0 errors in 50ms",
		"warning: flag X is deprecated",
		"DeprecationWarning: old API",
		"all good here",
	}, "\n")

	m := Extract(raw, 0, DefaultMarkers())
	require.Equal(t, 2, m.Warnings)
}

func TestExtract_ExcerptBounded(t *testing.T) {
	raw := strings.Repeat("x", 4*maxExcerpt)
	m := Extract(raw, 0, DefaultMarkers())

	require.Len(t, m.RawExcerpt, maxExcerpt)
}

func TestRules_OrderedAndNamed(t *testing.T) {
	names := make([]string, 0)
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"total", "passed", "failed", "errored", "warnings", "duration"}, names)
}
