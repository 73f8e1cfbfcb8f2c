package hook

// This file contains the hook configuration consumed from
// .testpulse/hooks.json. The pipeline reads this file; it never writes it.

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/testpulse/testpulse/extract"
	"github.com/testpulse/testpulse/session"
	"github.com/testpulse/testpulse/trend"
)

// Lifecycle events fired by the external hook dispatcher.
const (
	EventSessionStart = "session-start"
	EventPostRun      = "post-run"
	EventPreAction    = "pre-action"
	EventSessionEnd   = "session-end"
)

// ConfigName is the hook configuration file under the testpulse root.
const ConfigName = "hooks.json"

// DefaultTimeoutMS bounds a hook invocation when no timeout is configured.
const DefaultTimeoutMS = 5000

// EventConfig declares per-event behavior.
type EventConfig struct {
	// Blocking hooks return an allow/deny decision that can veto the
	// action they wrap; they deny on timeout
	Blocking bool `json:"blocking"`
	// Per-event timeout override in milliseconds
	TimeoutMS int64 `json:"timeout_ms,omitempty"`
}

// Config declares which hooks run, their timeouts, and the fixed marker and
// pattern vocabularies.
type Config struct {
	// Enabled disables the whole pipeline when false; blocking hooks
	// then allow unconditionally
	Enabled bool `json:"enabled"`
	// Default per-invocation timeout in milliseconds
	TimeoutMS int64 `json:"timeout_ms"`
	// Age after which an open session is treated as abandoned
	StaleSessionAfterMS int64 `json:"stale_session_after_ms"`
	// Number of history entries the trend window covers
	TrendWindow int `json:"trend_window"`
	// Substrings counted as warnings when no warning count marker matched
	WarningMarkers []string `json:"warning_markers"`
	// Substrings treated as uncounted errors in the output excerpt
	ErrorMarkers []string `json:"error_markers"`
	// Regular expressions the pre-action guard denies
	DangerousPatterns []string `json:"dangerous_patterns"`
	// Per-event overrides keyed by event name
	Events map[string]EventConfig `json:"events"`
}

// DefaultConfig returns the documented defaults applied when hooks.json is
// absent or leaves fields unset.
func DefaultConfig() Config {
	markers := extract.DefaultMarkers()
	return Config{
		Enabled:             true,
		TimeoutMS:           DefaultTimeoutMS,
		StaleSessionAfterMS: session.DefaultStaleAfter.Milliseconds(),
		TrendWindow:         trend.DefaultWindow,
		WarningMarkers:      markers.Warning,
		ErrorMarkers:        markers.Error,
		DangerousPatterns:   DefaultDangerousPatterns(),
		Events: map[string]EventConfig{
			EventPreAction: {Blocking: true, TimeoutMS: 2000},
		},
	}
}

// LoadConfig reads the configuration at path, filling unset fields from the
// defaults. A missing file yields the defaults; a malformed file is a real
// failure, not silently defaulted.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read hook config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse hook config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the effective timeout for an event.
func (c Config) Timeout(event string) time.Duration {
	if ec, ok := c.Events[event]; ok && ec.TimeoutMS > 0 {
		return time.Duration(ec.TimeoutMS) * time.Millisecond
	}
	if c.TimeoutMS > 0 {
		return time.Duration(c.TimeoutMS) * time.Millisecond
	}
	return DefaultTimeoutMS * time.Millisecond
}

// Blocking reports whether an event's hook may veto the action it wraps.
func (c Config) Blocking(event string) bool {
	return c.Events[event].Blocking
}

// Markers returns the configured extraction marker vocabulary.
func (c Config) Markers() extract.MarkerSet {
	return extract.MarkerSet{
		Warning: c.WarningMarkers,
		Error:   c.ErrorMarkers,
	}
}

// StaleAfter returns the stale-session threshold as a duration.
func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleSessionAfterMS) * time.Millisecond
}
