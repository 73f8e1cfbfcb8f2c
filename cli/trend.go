package cli

// This file contains the trend command for printing the rolling quality
// direction without closing a session.

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func (a *App) trend(ctx *cli.Context) error {
	o, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	tr, err := o.Trend()
	if err != nil {
		return fmt.Errorf("failed to compute trend: %w", err)
	}

	if tr.WindowSize == 0 {
		fmt.Println("No history recorded yet")
		return nil
	}

	fmt.Printf("Direction: %s\n", tr.Direction)
	fmt.Printf("Window: last %d runs\n", tr.WindowSize)
	fmt.Printf("Avg pass rate: %.1f%%\n", tr.AvgPassRate*100)
	fmt.Printf("Avg duration: %.0fms\n", tr.AvgDurationMS)
	return nil
}
