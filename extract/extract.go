// Package extract parses raw test-runner output into run metrics.
package extract

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/testpulse/testpulse/model"
)

// maxExcerpt bounds the raw output snippet retained on each record.
const maxExcerpt = 1024

// Rule is one named extraction pattern. Rules are applied in order against
// the whole output; the first match wins and unmatched rules leave their
// field at the zero default.
type Rule struct {
	// Name of the field this rule populates
	Name string
	// Pattern with a single capture group holding the integer value
	Pattern *regexp.Regexp
	// Apply stores the captured value on the record
	Apply func(value int64, m *model.RunMetrics)
}

// Rules returns the fixed, ordered extraction rule set.
func Rules() []Rule {
	return []Rule{
		{
			Name:    "total",
			Pattern: regexp.MustCompile(`(?i)\b(\d+)\s+(?:tests?|total)\b`),
			Apply:   func(v int64, m *model.RunMetrics) { m.Total = int(v) },
		},
		{
			Name:    "passed",
			Pattern: regexp.MustCompile(`(?i)\b(\d+)\s+passed\b`),
			Apply:   func(v int64, m *model.RunMetrics) { m.Passed = int(v) },
		},
		{
			Name:    "failed",
			Pattern: regexp.MustCompile(`(?i)\b(\d+)\s+failed\b`),
			Apply:   func(v int64, m *model.RunMetrics) { m.Failed = int(v) },
		},
		{
			Name:    "errored",
			Pattern: regexp.MustCompile(`(?i)\b(\d+)\s+errors?\b`),
			Apply:   func(v int64, m *model.RunMetrics) { m.Errored = int(v) },
		},
		{
			Name:    "warnings",
			Pattern: regexp.MustCompile(`(?i)\b(\d+)\s+warnings?\b`),
			Apply:   func(v int64, m *model.RunMetrics) { m.Warnings = int(v) },
		},
		{
			Name:    "duration",
			Pattern: regexp.MustCompile(`(?i)\b(\d+)\s*ms\b`),
			Apply:   func(v int64, m *model.RunMetrics) { m.DurationMS = v },
		},
	}
}

// MarkerSet is the fixed substring vocabulary scanned for when no explicit
// count marker is present. It comes from configuration, not inference.
type MarkerSet struct {
	Warning []string `json:"warning_markers,omitempty"`
	Error   []string `json:"error_markers,omitempty"`
}

// DefaultMarkers returns the documented default marker vocabulary.
func DefaultMarkers() MarkerSet {
	return MarkerSet{
		Warning: []string{"warning:", "deprecated", "DeprecationWarning"},
		Error:   []string{"error:", "ERROR", "panic:"},
	}
}

// ContainsError reports whether any configured error marker appears in s.
func (ms MarkerSet) ContainsError(s string) bool {
	for _, marker := range ms.Error {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Extract parses raw test-runner output and its exit status into one
// RunMetrics record. Malformed or empty input is never an error: the record
// degrades to all-zero counts with whatever excerpt was available. The exit
// status is recorded verbatim and does not override parsed counts.
func Extract(raw string, exitCode int, markers MarkerSet) model.RunMetrics {
	m := model.RunMetrics{
		Timestamp:  time.Now(),
		ExitCode:   exitCode,
		RawExcerpt: excerpt(raw),
	}

	haveTotal := false
	for _, rule := range Rules() {
		match := rule.Pattern.FindStringSubmatch(raw)
		if match == nil {
			continue
		}
		v, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			// Capture group is digits only, so this cannot happen
			// short of an overflowing count; skip the rule.
			continue
		}
		rule.Apply(v, &m)
		if rule.Name == "total" {
			haveTotal = true
		}
	}

	// Without an explicit total marker the total is the sum of the parsed
	// categories. An explicit marker is kept as parsed even when it
	// disagrees; the anomaly detector flags the mismatch.
	if !haveTotal {
		m.Total = m.Passed + m.Failed + m.Errored
	}

	// Fall back to counting marker lines when the runner printed no
	// warning count.
	if m.Warnings == 0 {
		m.Warnings = countMarkerLines(raw, markers.Warning)
	}

	return m
}

// countMarkerLines counts lines containing at least one of the markers.
func countMarkerLines(raw string, markers []string) int {
	if len(markers) == 0 {
		return 0
	}

	count := 0
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		for _, marker := range markers {
			if strings.Contains(line, marker) {
				count++
				break
			}
		}
	}
	// Scanner errors only occur on oversized lines; those lines simply
	// stop the count, which is acceptable for a diagnostic counter.
	return count
}

func excerpt(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > maxExcerpt {
		s = s[:maxExcerpt]
	}
	return s
}
