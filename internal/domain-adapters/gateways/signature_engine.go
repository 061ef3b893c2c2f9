package gateways

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkgverify/internal/external-adapters/gnupg"
	"github.com/ochairo/pkgverify/internal/external-adapters/gpg"
)

// EngineSet pairs a signature engine with the key id extractor that reads
// signatures the same way
type EngineSet struct {
	Engine gateways.SignatureEngine
	KeyIDs gateways.KeyIDExtractor
}

// LookPath reports whether an executable can be found
type LookPath func(binary string) bool

// EngineOptions carry the process hooks used by the gpg backend
type EngineOptions struct {
	Runner   gnupg.Runner
	LookPath LookPath
}

// SelectEngine picks the signature backend for cfg.
//
// "native" and "gpg" force a backend. "auto" uses the in-process engine unless the
// keyring home already holds a gpg keybox (pubring.kbx) and the gpg binary is
// installed, since only gpg can read a keybox.
func SelectEngine(cfg entities.Config, opts EngineOptions, logger interfaces.Logger) (EngineSet, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	if opts.LookPath == nil {
		opts.LookPath = gnupg.IsInstalled
	}

	engine := cfg.Engine
	if engine == "" || engine == entities.EngineAuto {
		engine = autoEngine(cfg, opts)
	}

	logger.Debug("selected signature engine", interfaces.F("engine", engine))

	switch engine {
	case entities.EngineNative:
		return EngineSet{
			Engine: gpg.NewEngine(cfg.TempDir, logger),
			KeyIDs: gpg.NewKeyIDExtractor(),
		}, nil
	case entities.EngineGPG:
		if !opts.LookPath(cfg.GPGBinary) {
			return EngineSet{}, fmt.Errorf("gpg binary %q not found in PATH", cfg.GPGBinary)
		}
		return EngineSet{
			Engine: gnupg.NewEngine(cfg.GPGBinary, opts.Runner, cfg.TempDir, logger),
			KeyIDs: gnupg.NewKeyIDExtractor(cfg.GPGBinary, opts.Runner),
		}, nil
	default:
		return EngineSet{}, fmt.Errorf("unknown engine %q", engine)
	}
}

func autoEngine(cfg entities.Config, opts EngineOptions) string {
	if cfg.GnupgHome != "" && hasKeybox(cfg.GnupgHome) && cfg.GPGBinary != "" && opts.LookPath(cfg.GPGBinary) {
		return entities.EngineGPG
	}
	return entities.EngineNative
}

// hasKeybox reports whether home holds a gpg 2.1+ keybox, which is not an
// OpenPGP packet file
func hasKeybox(home string) bool {
	info, err := os.Stat(filepath.Join(home, "pubring.kbx"))
	return err == nil && !info.IsDir() && info.Size() > 0
}
