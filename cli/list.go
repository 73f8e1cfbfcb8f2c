package cli

// This file contains the list command for showing previous session reports.

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/testpulse/testpulse/model"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	o, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	entries, err := o.Reports().List()
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No session reports found")
		fmt.Println("Reports are written on session end to .testpulse/reports/<session-id>.json")
		return nil
	}

	displayEntries := entries
	if limit > 0 && limit < len(displayEntries) {
		displayEntries = displayEntries[:limit]
	}

	fmt.Printf("\n=== Session Reports (%d total) ===\n\n", len(entries))

	for _, entry := range displayEntries {
		r := entry.Report
		sess := r.Session

		status := "✓"
		for _, anomaly := range sess.Anomalies {
			if anomaly.Severity == model.SeverityCritical || anomaly.Severity == model.SeverityHigh {
				status = "✗"
				break
			}
		}

		fmt.Printf("%s  %s  runs=%d  anomalies=%d  trend=%s  id=%s\n",
			status,
			sess.CreatedAt.Format("2006-01-02 15:04:05"),
			len(sess.Runs),
			len(sess.Anomalies),
			r.Trend.Direction,
			sess.ID)
		if branch := sess.Environment[model.EnvBranch]; branch != "" {
			commit := sess.Environment[model.EnvCommit]
			if len(commit) > 8 {
				commit = commit[:8]
			}
			fmt.Printf("   Commit: %s (%s)\n", commit, branch)
		}
		if len(r.Recommendations) > 0 {
			top := r.Recommendations[0]
			fmt.Printf("   [%s] %s\n", top.Priority, top.Text)
		}
		fmt.Printf("   %s\n", entry.FullPath)
		fmt.Println()
	}

	fmt.Println("\nView a report: testpulse view <id>")

	return nil
}
