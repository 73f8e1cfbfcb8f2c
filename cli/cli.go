// Package cli wires the testpulse commands invoked by the hook dispatcher
// and by engineers inspecting past sessions.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "testpulse"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Observability pipeline for test-execution workflows",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:  "root",
					Usage: "Override the .testpulse root directory",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:  "hook",
		Usage: "Lifecycle entry points invoked by the hook dispatcher",
		Subcommands: []*cli.Command{
			{
				Name:   "session-start",
				Usage:  "Open a session and capture the environment snapshot",
				Action: app.hookSessionStart,
			},
			{
				Name:   "post-run",
				Usage:  "Record one finished test run (raw runner output on stdin)",
				Action: app.hookPostRun,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "exit-code",
						Usage: "Exit status of the test runner",
					},
				},
			},
			{
				Name:      "pre-action",
				Usage:     "Blocking safety gate: exit 0 allows the command, non-zero denies it",
				ArgsUsage: "<command...>",
				Action:    app.hookPreAction,
			},
			{
				Name:   "session-end",
				Usage:  "Close the session and generate its report",
				Action: app.hookSessionEnd,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous session reports",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "View a session report",
		ArgsUsage: "[ID|INDEX]",
		Action:    app.view,
		Description: `View a session report.

Arguments:
  0           View last report (default)
  -1          View 2nd last report
  -2          View 3rd last report
  <id>        View report matching the session id prefix

Examples:
  testpulse view           # View last report
  testpulse view -1        # View 2nd last report
  testpulse view 20260826  # View report for a session id starting with 20260826`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "trend",
		Usage:  "Print the rolling trend over the history log",
		Action: app.trend,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
