// Package hook sequences the observability pipeline at the lifecycle events
// fired by the external hook dispatcher.
package hook

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/testpulse/testpulse/anomaly"
	"github.com/testpulse/testpulse/extract"
	"github.com/testpulse/testpulse/history"
	"github.com/testpulse/testpulse/model"
	"github.com/testpulse/testpulse/recommend"
	"github.com/testpulse/testpulse/report"
	"github.com/testpulse/testpulse/session"
	"github.com/testpulse/testpulse/trend"
)

var (
	// ErrTimeout marks a hook invocation that exceeded its configured
	// timeout. Non-blocking hooks log it and continue; blocking hooks
	// deny on it.
	ErrTimeout = errors.New("hook invocation timed out")
	// ErrNoSession is returned when a run or session-end event arrives
	// with no open session.
	ErrNoSession = errors.New("no open session")
)

// Orchestrator drives the pipeline stages (extract, detect, append, and on
// close trend, recommend, report) at each lifecycle event. It holds the
// only reference to the session and threads it through every stage; there
// is no process-wide current-session state.
type Orchestrator struct {
	logger  zerolog.Logger
	cfg     Config
	store   *session.Store
	log     *history.Log
	reports *report.Generator
	check   func(command string) Decision
}

// NewOrchestrator wires the pipeline components under the given testpulse
// root directory.
func NewOrchestrator(logger zerolog.Logger, cfg Config, root string) *Orchestrator {
	return &Orchestrator{
		logger:  logger,
		cfg:     cfg,
		store:   session.NewStore(logger, root, cfg.StaleAfter()),
		log:     history.New(logger, root),
		reports: report.NewGenerator(logger, root),
		check:   newGuard(logger, cfg.DangerousPatterns).Check,
	}
}

// Config returns the loaded hook configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Store exposes the session store for read-only inspection commands.
func (o *Orchestrator) Store() *session.Store {
	return o.store
}

// Reports exposes the report generator for the list and view commands.
func (o *Orchestrator) Reports() *report.Generator {
	return o.reports
}

// Trend computes the current trend over the history log.
func (o *Orchestrator) Trend() (model.TrendResult, error) {
	entries, err := o.log.Tail(o.cfg.TrendWindow)
	if err != nil {
		return model.TrendResult{}, err
	}
	return trend.Analyze(entries, o.cfg.TrendWindow), nil
}

// SessionStart opens a new session with a fresh environment snapshot. A
// stale open session left by a crashed dispatcher is closed as incomplete
// by the store before the new one opens.
func (o *Orchestrator) SessionStart(ctx context.Context) error {
	if !o.cfg.Enabled {
		o.logger.Debug().Msg("Hooks disabled, skipping session start")
		return nil
	}

	return o.runStage(ctx, EventSessionStart, func(context.Context) error {
		sess, err := o.store.Open(o.environmentSnapshot())
		if err != nil {
			return err
		}
		o.logger.Info().Str("session", sess.ID).Msg("Session started")
		return nil
	})
}

// RunCompleted records one finished test run: extract metrics from the raw
// runner output, detect anomalies, append both to the open session, and
// append exactly one entry to the history log.
func (o *Orchestrator) RunCompleted(ctx context.Context, raw string, exitCode int) error {
	if !o.cfg.Enabled {
		o.logger.Debug().Msg("Hooks disabled, skipping run recording")
		return nil
	}

	return o.runStage(ctx, EventPostRun, func(context.Context) error {
		sess, err := o.store.Current()
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoSession
		}

		markers := o.cfg.Markers()
		run := extract.Extract(raw, exitCode, markers)
		anomalies := anomaly.Detect(run, sess.Runs, markers)

		if err := o.store.Append(sess, run, anomalies); err != nil {
			return err
		}

		entry := model.HistoricalEntry{
			Timestamp:    run.Timestamp,
			PassRate:     run.PassRate(),
			DurationMS:   run.DurationMS,
			AnomalyCount: len(anomalies),
		}
		if err := o.log.Append(entry); err != nil {
			return err
		}

		o.logger.Info().
			Str("session", sess.ID).
			Int("total", run.Total).
			Int("passed", run.Passed).
			Int("failed", run.Failed).
			Int("errored", run.Errored).
			Int64("duration_ms", run.DurationMS).
			Int("anomalies", len(anomalies)).
			Msg("Run recorded")
		return nil
	})
}

// PreAction is the blocking safety gate around a flagged command. The
// decision is returned synchronously to the dispatcher before the guarded
// action executes; a timeout denies (fail closed, never fail open).
func (o *Orchestrator) PreAction(ctx context.Context, command string) Decision {
	if !o.cfg.Enabled {
		return Allow()
	}

	var decision Decision
	err := o.runStage(ctx, EventPreAction, func(context.Context) error {
		decision = o.check(command)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			o.logger.Error().Str("command", command).Msg("Pre-action check timed out, denying")
			return Deny("safety check timed out")
		}
		return Deny(fmt.Sprintf("safety check failed: %v", err))
	}

	if !decision.Allow {
		o.logger.Warn().Str("reason", decision.Reason).Msg("Command denied")
	}
	return decision
}

// SessionEnd closes the open session and produces its report: trend over
// the history log, recommendations from the session's anomalies plus the
// trend, then close and persist. Any failure before the report is written
// means no partial report exists on disk. It returns the report path.
func (o *Orchestrator) SessionEnd(ctx context.Context) (string, error) {
	if !o.cfg.Enabled {
		o.logger.Debug().Msg("Hooks disabled, skipping session end")
		return "", nil
	}

	var path string
	err := o.runStage(ctx, EventSessionEnd, func(context.Context) error {
		sess, err := o.store.Current()
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoSession
		}

		entries, err := o.log.Tail(o.cfg.TrendWindow)
		if err != nil {
			return err
		}
		tr := trend.Analyze(entries, o.cfg.TrendWindow)
		recs := recommend.Build(sess.Anomalies, tr)

		// Close first: the report contract requires a closed_at, and a
		// failed close must prevent the report, not truncate it.
		if err := o.store.Close(sess); err != nil {
			return err
		}

		rep, err := o.reports.Generate(sess, tr, recs)
		if err != nil {
			return err
		}
		path, err = o.reports.Write(rep)
		if err != nil {
			return err
		}

		o.logger.Info().
			Str("session", sess.ID).
			Str("report", path).
			Str("direction", string(tr.Direction)).
			Int("recommendations", len(recs)).
			Msg("Session closed")
		return nil
	})
	return path, err
}

// runStage bounds one hook invocation by the event's configured timeout.
func (o *Orchestrator) runStage(ctx context.Context, event string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout(event))
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w", event, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s after %s: %w", event, o.cfg.Timeout(event), ErrTimeout)
	}
}
