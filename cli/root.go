package cli

// This file resolves the .testpulse root directory that holds sessions,
// reports, the history log, and the hook configuration.

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/testpulse/testpulse/hook"
)

const rootDirName = ".testpulse"

// testpulseRoot returns the state directory: the --root flag when given,
// otherwise .testpulse under the git repository root, falling back to the
// working directory outside a repository. The directory is created on
// demand since hook invocations must work on a fresh checkout.
func (a *App) testpulseRoot(ctx *cli.Context) (string, error) {
	root := ctx.String("root")
	if root == "" {
		base, err := repoRoot()
		if err != nil {
			a.logger.Debug().Err(err).Msg("Not in a git repository, using working directory")
			base, err = os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to determine working directory: %w", err)
			}
		}
		root = filepath.Join(base, rootDirName)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", root, err)
	}
	return root, nil
}

func repoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// orchestrator loads the hook configuration under the resolved root and
// wires the pipeline.
func (a *App) orchestrator(ctx *cli.Context) (*hook.Orchestrator, error) {
	root, err := a.testpulseRoot(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := hook.LoadConfig(filepath.Join(root, hook.ConfigName))
	if err != nil {
		return nil, err
	}
	return hook.NewOrchestrator(a.logger, cfg, root), nil
}
