package model

import "time"

// SessionStatus represents the lifecycle state of a session record.
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
	// SessionStatusIncomplete marks a session that was left open by a
	// crashed or abandoned dispatcher and closed on the next session start.
	SessionStatusIncomplete SessionStatus = "incomplete"
)

// Environment snapshot keys captured once at session start.
const (
	EnvPlatform = "platform"
	EnvRuntime  = "runtime"
	EnvBranch   = "branch"
	EnvCommit   = "commit"
)

// Session represents one observed workflow invocation, bounding one or
// more test runs.
type Session struct {
	// Unique ID for this session (start timestamp plus 4 random bytes, hex encoded)
	ID string `json:"id"`
	// Environment snapshot captured at session start, immutable thereafter
	Environment map[string]string `json:"environment"`
	// Metrics for each test run, in execution order
	Runs []RunMetrics `json:"runs"`
	// Anomalies detected across all runs, in detection order
	Anomalies []AnomalyRecord `json:"anomalies,omitempty"`
	// Lifecycle state of the session
	Status SessionStatus `json:"status"`
	// Timestamp when the session was opened
	CreatedAt time.Time `json:"created_at"`
	// Timestamp when the session was closed (zero while open)
	ClosedAt time.Time `json:"closed_at,omitempty"`
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return !s.ClosedAt.IsZero()
}
