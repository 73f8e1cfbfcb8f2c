// Package session persists the lifecycle of workflow sessions.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/testpulse/testpulse/model"
)

// Sequencing violations surfaced to the dispatcher as failures.
var (
	// ErrDuplicateSession is returned by Open while a live session is open.
	ErrDuplicateSession = errors.New("a session is already open")
	// ErrClosedSession is returned by Append after the session was closed.
	ErrClosedSession = errors.New("session is closed")
	// ErrAlreadyClosed is returned by Close on every call after the first.
	ErrAlreadyClosed = errors.New("session already closed")
)

const (
	sessionsDirName = "sessions"
	pointerName     = "current"

	// DefaultStaleAfter is how old an open session may be before the next
	// session start treats it as abandoned and closes it as incomplete.
	DefaultStaleAfter = 2 * time.Hour
)

// Store creates, loads, and persists session records under the testpulse
// root. Exactly one session may be open at a time; the open session id is
// kept in a pointer file so each hook invocation (a separate process) finds
// the same session.
type Store struct {
	logger     zerolog.Logger
	root       string
	staleAfter time.Duration
}

// NewStore returns a Store rooted at the given testpulse directory.
// A non-positive staleAfter falls back to DefaultStaleAfter.
func NewStore(logger zerolog.Logger, root string, staleAfter time.Duration) *Store {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Store{
		logger:     logger,
		root:       root,
		staleAfter: staleAfter,
	}
}

// NewID builds a time-based session id: start timestamp plus 4 random
// bytes, hex encoded.
func NewID(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return fmt.Sprintf("%s-%s", now.Format("20060102-150405"), hex.EncodeToString(suffix)), nil
}

// Open creates a new session with the given environment snapshot. It fails
// with ErrDuplicateSession when a live session is already open. An open
// session older than the staleness threshold is closed with status
// incomplete first; a stale session never merges with the new one.
func (s *Store) Open(env map[string]string) (*model.Session, error) {
	now := time.Now()

	cur, err := s.Current()
	if err != nil {
		return nil, err
	}
	if cur != nil && !cur.Closed() {
		if now.Sub(cur.CreatedAt) < s.staleAfter {
			return nil, fmt.Errorf("session %s: %w", cur.ID, ErrDuplicateSession)
		}
		cur.Status = model.SessionStatusIncomplete
		cur.ClosedAt = now
		if err := s.persist(cur); err != nil {
			return nil, fmt.Errorf("failed to close stale session %s: %w", cur.ID, err)
		}
		s.logger.Warn().
			Str("session", cur.ID).
			Time("created_at", cur.CreatedAt).
			Msg("Closed stale session as incomplete")
	}

	id, err := NewID(now)
	if err != nil {
		return nil, err
	}

	sess := &model.Session{
		ID:          id,
		Environment: env,
		Status:      model.SessionStatusOpen,
		CreatedAt:   now,
	}

	if err := s.persist(sess); err != nil {
		return nil, err
	}
	if err := s.setPointer(sess.ID); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("session", sess.ID).Msg("Opened session")
	return sess, nil
}

// Append records one run and its anomalies on the session, in call order.
// The session document is persisted in full before Append returns, so a
// crash cannot leave the on-disk record behind the in-memory one.
func (s *Store) Append(sess *model.Session, run model.RunMetrics, anomalies []model.AnomalyRecord) error {
	if sess.Closed() {
		return fmt.Errorf("session %s: %w", sess.ID, ErrClosedSession)
	}

	sess.Runs = append(sess.Runs, run)
	sess.Anomalies = append(sess.Anomalies, anomalies...)

	if err := s.persist(sess); err != nil {
		return err
	}

	s.logger.Debug().
		Str("session", sess.ID).
		Int("runs", len(sess.Runs)).
		Msg("Appended run to session")
	return nil
}

// Close sets closed_at, persists the session, and clears the open-session
// pointer. The second and every later call fails with ErrAlreadyClosed.
func (s *Store) Close(sess *model.Session) error {
	if sess.Closed() {
		return fmt.Errorf("session %s: %w", sess.ID, ErrAlreadyClosed)
	}

	sess.ClosedAt = time.Now()
	sess.Status = model.SessionStatusClosed

	if err := s.persist(sess); err != nil {
		return err
	}
	if err := s.clearPointer(); err != nil {
		s.logger.Warn().Err(err).Str("session", sess.ID).Msg("Failed to clear session pointer")
	}

	s.logger.Debug().Str("session", sess.ID).Msg("Closed session")
	return nil
}

// Current returns the session named by the pointer file, or nil when no
// session has been opened.
func (s *Store) Current() (*model.Session, error) {
	data, err := os.ReadFile(s.pointerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session pointer: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return nil, nil
	}
	return s.Load(id)
}

// Load reads the persisted session with the given id.
func (s *Store) Load(id string) (*model.Session, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &sess, nil
}

// persist writes the full session document atomically (temp file + rename).
func (s *Store) persist(sess *model.Session) error {
	dir := filepath.Join(s.root, sessionsDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", sess.ID, err)
	}

	tmp, err := os.CreateTemp(dir, sess.ID+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.sessionPath(sess.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to persist session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Store) setPointer(id string) error {
	if err := os.WriteFile(s.pointerPath(), []byte(id+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write session pointer: %w", err)
	}
	return nil
}

func (s *Store) clearPointer() error {
	if err := os.Remove(s.pointerPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.root, sessionsDirName, id+".json")
}

func (s *Store) pointerPath() string {
	return filepath.Join(s.root, pointerName)
}
