package cli

// This file contains the view command for displaying a single session
// report from the reports directory.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/testpulse/testpulse/report"
)

// resolveReportArg finds the report named by arg among entries sorted
// newest first: "0" is the last report, "-1" the second-to-last and so on,
// anything else matches a session id prefix.
func resolveReportArg(arg string, entries []report.Entry) (*report.Entry, error) {
	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			return nil, fmt.Errorf("invalid index: %s (use 0 for last, -1 for second-to-last, -2 for third-to-last, etc.)", arg)
		}
		index := int(-parsed)
		if index >= len(entries) {
			return nil, fmt.Errorf("index %s out of range (only %d reports)", arg, len(entries))
		}
		return &entries[index], nil
	}

	prefix := strings.ToLower(arg)
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].Report.Session.ID), prefix) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no report found matching ID: %s", arg)
}

func (a *App) view(ctx *cli.Context) error {
	arg := "0"
	if ctx.Args().Len() > 0 {
		arg = ctx.Args().First()
	}

	o, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	entries, err := o.Reports().List()
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no reports found")
	}

	entry, err := resolveReportArg(arg, entries)
	if err != nil {
		return err
	}
	return a.displayReport(entry)
}

func (a *App) displayReport(entry *report.Entry) error {
	r := entry.Report
	sess := r.Session

	fmt.Printf("=== Session: %s ===\n", sess.ID)
	fmt.Printf("Opened: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
	if sess.Closed() {
		fmt.Printf("Closed: %s (%s)\n", sess.ClosedAt.Format("2006-01-02 15:04:05"), sess.Status)
	}
	for key, value := range sess.Environment {
		fmt.Printf("  %s: %s\n", key, value)
	}

	fmt.Printf("\nRuns (%d):\n", len(sess.Runs))
	for i, run := range sess.Runs {
		fmt.Printf("  #%d  total=%d passed=%d failed=%d errored=%d  %dms  warnings=%d  exit=%d\n",
			i+1, run.Total, run.Passed, run.Failed, run.Errored,
			run.DurationMS, run.Warnings, run.ExitCode)
	}

	if len(sess.Anomalies) > 0 {
		fmt.Printf("\nAnomalies (%d):\n", len(sess.Anomalies))
		for _, anomaly := range sess.Anomalies {
			fmt.Printf("  [%s] %s: %s\n", anomaly.Severity, anomaly.Code, anomaly.Message)
		}
	}

	fmt.Printf("\nTrend: %s (window=%d, avg pass rate %.0f%%, avg duration %.0fms)\n",
		r.Trend.Direction, r.Trend.WindowSize, r.Trend.AvgPassRate*100, r.Trend.AvgDurationMS)

	fmt.Printf("\nRecommendations (%d):\n", len(r.Recommendations))
	for _, rec := range r.Recommendations {
		fmt.Printf("  [%s] %s\n", rec.Priority, rec.Text)
	}

	fmt.Printf("\n%s\n", entry.FullPath)
	return nil
}
