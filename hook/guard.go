package hook

// This file contains the pre-action safety guard that decides whether a
// flagged command may run.

import (
	"fmt"
	"regexp"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
)

// DefaultDangerousPatterns returns the built-in deny list for the
// pre-action guard: recursive deletion of the filesystem root, raw writes
// to block devices, filesystem creation, and fork bombs.
func DefaultDangerousPatterns() []string {
	return []string{
		`\brm\s+-[A-Za-z]*r[A-Za-z]*f[A-Za-z]*\s+/(\s|\*|$)`,
		`\brm\s+-[A-Za-z]*f[A-Za-z]*r[A-Za-z]*\s+/(\s|\*|$)`,
		`\bmkfs(\.\w+)?\b`,
		`\bdd\s+[^|;]*\bof=/dev/`,
		`>\s*/dev/(sd|nvme|vd)[a-z0-9]+`,
		`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`,
	}
}

// Decision is the binary outcome of a blocking hook, propagated to the
// dispatcher before the guarded action executes.
type Decision struct {
	// Allow is false when the guarded action must not run
	Allow bool `json:"allow"`
	// Reason explains a denial
	Reason string `json:"reason,omitempty"`
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allow: true}
}

// Deny returns a vetoing decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allow: false, Reason: reason}
}

// guard matches commands against the configured deny patterns.
type guard struct {
	patterns []*regexp.Regexp
}

// newGuard compiles the configured patterns; an invalid pattern is skipped
// with a warning rather than disabling the remaining ones.
func newGuard(logger zerolog.Logger, patterns []string) *guard {
	g := &guard{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", p).Msg("Skipping invalid dangerous-command pattern")
			continue
		}
		g.patterns = append(g.patterns, re)
	}
	return g
}

// Check returns the allow/deny decision for one command line.
func (g *guard) Check(command string) Decision {
	for _, re := range g.patterns {
		if re.MatchString(command) {
			return Deny(fmt.Sprintf("command %s matches dangerous pattern %q",
				shellescape.Quote(command), re.String()))
		}
	}
	return Allow()
}
