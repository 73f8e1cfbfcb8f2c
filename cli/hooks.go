package cli

// This file contains the actions behind the lifecycle hook subcommands.
// Timeouts on non-blocking hooks are logged and swallowed so the pipeline
// never fails the workflow it observes; blocking hooks deny instead.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/testpulse/testpulse/hook"
)

func (a *App) hookSessionStart(ctx *cli.Context) error {
	o, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}
	return a.nonFatalTimeout(o, hook.EventSessionStart, o.SessionStart(ctx.Context))
}

func (a *App) hookPostRun(ctx *cli.Context) error {
	o, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read runner output from stdin: %w", err)
	}

	return a.nonFatalTimeout(o, hook.EventPostRun, o.RunCompleted(ctx.Context, string(raw), ctx.Int("exit-code")))
}

func (a *App) hookPreAction(ctx *cli.Context) error {
	o, err := a.orchestrator(ctx)
	if err != nil {
		// A blocking hook that cannot even wire itself fails closed.
		return cli.Exit(fmt.Sprintf("deny: %v", err), 2)
	}

	command := strings.Join(ctx.Args().Slice(), " ")
	decision := o.PreAction(ctx.Context, command)
	if !decision.Allow {
		return cli.Exit(fmt.Sprintf("deny: %s", decision.Reason), 2)
	}
	return nil
}

func (a *App) hookSessionEnd(ctx *cli.Context) error {
	o, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	path, err := o.SessionEnd(ctx.Context)
	if err != nil {
		return a.nonFatalTimeout(o, hook.EventSessionEnd, err)
	}
	if path != "" {
		fmt.Println(path)
	}
	return nil
}

// nonFatalTimeout downgrades a timeout on a non-blocking hook to a warning:
// the dispatcher proceeds and the workflow is never failed by its observer.
// Hooks configured as blocking keep the failure, and every other error
// (state violations included) surfaces as a failure.
func (a *App) nonFatalTimeout(o *hook.Orchestrator, event string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, hook.ErrTimeout) && !o.Config().Blocking(event) {
		a.logger.Warn().Err(err).Str("event", event).Msg("Hook timed out, continuing")
		return nil
	}
	return err
}
