// Package history maintains the append-only log of per-run metrics that
// trend analysis reads.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/testpulse/testpulse/model"
)

// logName is the history log file under the testpulse root.
const logName = "history.log"

// maxLineSize bounds a single log line; longer lines are treated as corrupt.
const maxLineSize = 64 * 1024

// Log is the line-delimited history file. Each entry is one JSON object on
// its own line, written with a single O_APPEND write so an external
// concurrent appender cannot interleave partial lines.
type Log struct {
	logger zerolog.Logger
	path   string
}

// New returns a Log rooted at the given testpulse directory.
func New(logger zerolog.Logger, root string) *Log {
	return &Log{
		logger: logger,
		path:   filepath.Join(root, logName),
	}
}

// Path returns the location of the log file.
func (l *Log) Path() string {
	return l.path
}

// Append writes one entry as a single line. Entries are write-once: the log
// is never edited or compacted by this process.
func (l *Log) Append(entry model.HistoricalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// Tail returns the last n well-formed entries in write order. Malformed
// lines are skipped with a warning; a corrupt line never blocks the lines
// after it. A missing log yields an empty slice.
func (l *Log) Tail(n int) ([]model.HistoricalEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	var entries []model.HistoricalEntry
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry model.HistoricalEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			skipped++
			l.logger.Warn().Err(err).Str("path", l.path).Msg("Skipping malformed history line")
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}

	if skipped > 0 {
		l.logger.Warn().Int("skipped", skipped).Msg("History log contained malformed lines")
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
