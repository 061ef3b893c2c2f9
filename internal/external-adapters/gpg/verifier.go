// Package gpg provides OpenPGP signature verification in-process using
// ProtonMail's go-crypto, a maintained fork of golang.org/x/crypto/openpgp.
package gpg

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/external-adapters/gpghome"
)

// EngineName identifies the in-process backend
const EngineName = "native"

// pubringFile is the keyring file written into a keyring home on import
const pubringFile = "pubring.gpg"

const armorPrefix = "-----BEGIN PGP"

// Engine verifies detached signatures without any external tool
type Engine struct {
	tempDir string
	logger  interfaces.Logger
}

// NewEngine creates a native engine. Scoped keyring homes are created under
// tempDir (os.TempDir() when empty).
func NewEngine(tempDir string, logger interfaces.Logger) *Engine {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Engine{tempDir: tempDir, logger: logger}
}

// Name returns the backend name
func (e *Engine) Name() string {
	return EngineName
}

// Verify checks req.SignaturePath over req.ArtifactPath.
// With a public key the key is imported into a keyring home first; the home is
// req.Home when set and a scoped temporary directory otherwise, which is removed
// before Verify returns. Without a public key the keys already in req.Home are used.
func (e *Engine) Verify(_ context.Context, req entities.SignatureRequest) (*entities.SignatureFailure, error) {
	var keyring openpgp.EntityList

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

		if err := ImportKey(home.Dir, req.PublicKeyPath); err != nil {
			return nil, err
		}
		e.logger.Debug("imported public key",
			interfaces.F("key", req.PublicKeyPath),
			interfaces.F("home", home.Dir),
			interfaces.F("scoped", home.Scoped()),
		)

		keyring, err = LoadHome(home.Dir)
		if err != nil {
			return nil, err
		}
	} else {
		if req.Home == "" {
			return nil, fmt.Errorf("no public key or keyring home given")
		}
		var err error
		keyring, err = LoadHome(req.Home)
		if err != nil {
			return nil, err
		}
	}

	if err := CheckDetachedSignature(keyring, req.ArtifactPath, req.SignaturePath); err != nil {
		return &entities.SignatureFailure{Reason: err.Error()}, nil
	}
	return nil, nil
}

// ImportKey reads a public key file and appends its keys to <home>/pubring.gpg.
// Keys whose fingerprint the pubring already holds are skipped, so importing the
// same key again leaves the pubring untouched. Failures are *entities.KeyImportError.
func ImportKey(home, keyPath string) error {
	entityList, err := ReadKeyFile(keyPath)
	if err != nil {
		return &entities.KeyImportError{KeyPath: keyPath, Err: err}
	}

	pubring := filepath.Join(home, pubringFile)
	known, err := fingerprints(pubring)
	if err != nil {
		return &entities.KeyImportError{KeyPath: keyPath, Err: err}
	}

	var fresh openpgp.EntityList
	for _, entity := range entityList {
		fp := hex.EncodeToString(entity.PrimaryKey.Fingerprint)
		if known[fp] {
			continue
		}
		known[fp] = true
		fresh = append(fresh, entity)
	}
	if len(fresh) == 0 {
		return nil
	}

	//nolint:gosec // G304: home is a keyring directory owned by this process or the caller
	f, err := os.OpenFile(pubring, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return &entities.KeyImportError{KeyPath: keyPath, Err: fmt.Errorf("failed to open keyring: %w", err)}
	}
	//nolint:errcheck // Close error is reported by the explicit Close below
	defer f.Close()

	for _, entity := range fresh {
		if err := entity.Serialize(f); err != nil {
			return &entities.KeyImportError{
				KeyPath: keyPath,
				Err:     fmt.Errorf("failed to write key %X: %w", entity.PrimaryKey.Fingerprint, err),
			}
		}
	}
	if err := f.Close(); err != nil {
		return &entities.KeyImportError{KeyPath: keyPath, Err: err}
	}
	return nil
}

// fingerprints returns the primary key fingerprints held by a pubring file,
// empty when the file does not exist yet
func fingerprints(pubring string) (map[string]bool, error) {
	known := map[string]bool{}
	info, err := os.Stat(pubring)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		return known, nil
	}

	entityList, err := ReadKeyFile(pubring)
	if err != nil {
		return nil, err
	}
	for _, entity := range entityList {
		known[hex.EncodeToString(entity.PrimaryKey.Fingerprint)] = true
	}
	return known, nil
}

// LoadHome loads every key in a keyring home: the pubring written by ImportKey
// plus any *.pkey or *.asc key files
func LoadHome(home string) (openpgp.EntityList, error) {
	var keyring openpgp.EntityList

	candidates := []string{filepath.Join(home, pubringFile)}
	for _, pattern := range []string{"*.pkey", "*.asc"} {
		matches, err := filepath.Glob(filepath.Join(home, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list keys: %w", err)
		}
		candidates = append(candidates, matches...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		entityList, err := ReadKeyFile(path)
		if err != nil {
			return nil, err
		}
		keyring = append(keyring, entityList...)
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys found in %s", home)
	}
	return keyring, nil
}

// ReadKeyFile reads armored or binary public keys from a file
func ReadKeyFile(keyPath string) (openpgp.EntityList, error) {
	//nolint:gosec // G304: keyPath is a trusted key file
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}

	var entityList openpgp.EntityList
	if isArmored(data) {
		entityList, err = openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	} else {
		entityList, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", keyPath, err)
	}

	if len(entityList) == 0 {
		return nil, fmt.Errorf("no keys found in %s", keyPath)
	}
	return entityList, nil
}

// CheckDetachedSignature verifies an armored or binary detached signature
func CheckDetachedSignature(keyring openpgp.KeyRing, filePath, sigPath string) error {
	//nolint:gosec // G304: sigPath is user-provided for GPG verification
	sigData, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature file: %w", err)
	}

	//nolint:gosec // G304: filePath is user-provided for GPG verification
	dataFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer dataFile.Close()

	var verifyErr error
	if isArmored(sigData) {
		_, verifyErr = openpgp.CheckArmoredDetachedSignature(keyring, dataFile, bytes.NewReader(sigData), nil)
	} else {
		_, verifyErr = openpgp.CheckDetachedSignature(keyring, dataFile, bytes.NewReader(sigData), nil)
	}

	if verifyErr != nil {
		return fmt.Errorf("signature verification failed: %w", verifyErr)
	}
	return nil
}

func isArmored(data []byte) bool {
	return strings.HasPrefix(strings.TrimLeft(string(peek(data, 64)), " \t\r\n"), armorPrefix)
}

func peek(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}
