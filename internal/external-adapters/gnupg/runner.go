// Package gnupg verifies OpenPGP signatures by running the gpg command line tool.
package gnupg

import (
	"context"

	"github.com/jmgilman/go/exec"
)

// Runner runs one command with extra environment variables and captures its output.
// A command that ran but exited non-zero returns both a Result and an error.
type Runner interface {
	Run(ctx context.Context, env map[string]string, args ...string) (*exec.Result, error)
}

// ExecRunner runs commands with github.com/jmgilman/go/exec.
// The parent environment is inherited; env entries are set on the child only.
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, env map[string]string, args ...string) (*exec.Result, error) {
	cmd := exec.New(
		exec.WithContext(ctx),
		exec.WithInheritEnv(),
		exec.WithDisableColors(),
		exec.WithEnv(env),
	)
	return cmd.Run(args...)
}
