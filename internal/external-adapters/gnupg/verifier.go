package gnupg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/external-adapters/gpghome"
)

// EngineName identifies the subprocess backend
const EngineName = "gpg"

// homeEnv names the keyring home for the child process only
const homeEnv = "GNUPGHOME"

// Engine verifies detached signatures with `gpg --verify`
type Engine struct {
	binary  string
	runner  Runner
	tempDir string
	logger  interfaces.Logger
}

// NewEngine creates a subprocess engine running binary (usually "gpg")
func NewEngine(binary string, runner Runner, tempDir string, logger interfaces.Logger) *Engine {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Engine{binary: binary, runner: runner, tempDir: tempDir, logger: logger}
}

// Name returns the backend name
func (e *Engine) Name() string {
	return EngineName
}

// Verify checks req.SignaturePath over req.ArtifactPath.
// With a public key the key is imported with `gpg --import` into req.Home, or a
// scoped temporary home removed before Verify returns; a failed import is a
// *entities.KeyImportError. Without a public key gpg uses req.Home or its default keyring.
func (e *Engine) Verify(ctx context.Context, req entities.SignatureRequest) (*entities.SignatureFailure, error) {
	env := map[string]string{}

	if req.PublicKeyPath != "" {
		home, err := gpghome.Acquire(req.Home, e.tempDir)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := home.Release(); err != nil {
				e.logger.Warn("failed to remove keyring home", interfaces.F("dir", home.Dir), interfaces.F("error", err.Error()))
			}
		}()
		env[homeEnv] = home.Dir

		if err := e.importKey(ctx, env, req.PublicKeyPath); err != nil {
			return nil, err
		}
	} else if req.Home != "" {
		env[homeEnv] = req.Home
	}

	result, err := e.runner.Run(ctx, env, e.binary, "--batch", "--no-tty", "--verify", req.SignaturePath, req.ArtifactPath)
	if result == nil || result.ExitCode < 0 {
		return nil, fmt.Errorf("failed to run %s: %w", e.binary, err)
	}
	if result.ExitCode == 0 {
		return nil, nil
	}

	reason := strings.TrimSpace(result.Stderr)
	if reason == "" {
		reason = fmt.Sprintf("%s --verify exited with code %d", e.binary, result.ExitCode)
	}
	return &entities.SignatureFailure{Reason: reason}, nil
}

func (e *Engine) importKey(ctx context.Context, env map[string]string, keyPath string) error {
	result, err := e.runner.Run(ctx, env, e.binary, "--batch", "--no-tty", "--import", keyPath)
	if result == nil || result.ExitCode != 0 {
		msg := ""
		if result != nil {
			msg = strings.TrimSpace(result.Stderr)
		}
		if msg == "" && err != nil {
			msg = err.Error()
		}
		return &entities.KeyImportError{KeyPath: keyPath, Err: errors.New(msg)}
	}

	e.logger.Debug("imported public key",
		interfaces.F("key", keyPath),
		interfaces.F("home", env[homeEnv]),
	)
	return nil
}

// IsInstalled checks if binary is available in PATH
func IsInstalled(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
