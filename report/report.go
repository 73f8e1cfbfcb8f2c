// Package report assembles and persists the terminal per-session artifact.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/testpulse/testpulse/model"
)

// ErrIncompleteSession is returned when a report is requested for a session
// that has no closed_at timestamp.
var ErrIncompleteSession = errors.New("session has not been closed")

const reportsDirName = "reports"

// Generator builds and persists Report documents under the testpulse root.
// Reports are read-only once written.
type Generator struct {
	logger zerolog.Logger
	root   string
}

// NewGenerator returns a Generator rooted at the given testpulse directory.
func NewGenerator(logger zerolog.Logger, root string) *Generator {
	return &Generator{logger: logger, root: root}
}

// Generate assembles the report for a closed session. It fails with
// ErrIncompleteSession when the session lacks a closed_at, so a partial
// report can never be produced from a half-finished session.
func (g *Generator) Generate(sess *model.Session, tr model.TrendResult, recs []model.RecommendationRecord) (model.Report, error) {
	if !sess.Closed() {
		return model.Report{}, fmt.Errorf("session %s: %w", sess.ID, ErrIncompleteSession)
	}

	return model.Report{
		Session:         *sess,
		Trend:           tr,
		Recommendations: recs,
		GeneratedAt:     time.Now(),
	}, nil
}

// Write persists the report exactly once; a report that already exists for
// the session is never overwritten.
func (g *Generator) Write(r model.Report) (string, error) {
	dir := filepath.Join(g.root, reportsDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(dir, r.Session.ID+".json")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	g.logger.Debug().Str("path", path).Str("session", r.Session.ID).Msg("Wrote report")
	return path, nil
}

// Entry pairs a loaded report with its location on disk.
type Entry struct {
	Report   model.Report
	FullPath string
}

// List loads all persisted reports, newest first. Unparseable report files
// are skipped with a warning.
func (g *Generator) List() ([]Entry, error) {
	dir := filepath.Join(g.root, reportsDirName)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, f.Name())
		r, err := g.Load(path)
		if err != nil {
			g.logger.Warn().Err(err).Str("path", path).Msg("Failed to parse report")
			continue
		}
		entries = append(entries, Entry{Report: r, FullPath: path})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Report.GeneratedAt.After(entries[j].Report.GeneratedAt)
	})
	return entries, nil
}

// Load reads one persisted report document.
func (g *Generator) Load(path string) (model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Report{}, err
	}

	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Report{}, err
	}
	return r, nil
}
