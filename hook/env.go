package hook

// This file contains the environment snapshot captured once at session
// start.

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/testpulse/testpulse/model"
)

// environmentSnapshot returns the fixed-key environment mapping recorded on
// every session. Git information is best-effort: outside a repository the
// keys are simply absent.
func (o *Orchestrator) environmentSnapshot() map[string]string {
	env := map[string]string{
		model.EnvPlatform: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		model.EnvRuntime:  runtime.Version(),
	}

	if commit, branch, err := gitInfo(); err == nil {
		env[model.EnvCommit] = commit
		env[model.EnvBranch] = branch
	} else {
		o.logger.Debug().Err(err).Msg("Git info unavailable for environment snapshot")
	}
	return env
}

func gitInfo() (commit, branch string, err error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("failed to get git commit: %w", err)
	}
	commit = strings.TrimSpace(string(output))

	cmd = exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	output, err = cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("failed to get git branch: %w", err)
	}
	branch = strings.TrimSpace(string(output))

	return commit, branch, nil
}
