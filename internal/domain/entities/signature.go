package entities

import "fmt"

// SignatureRequest asks a signature engine to verify one detached signature
type SignatureRequest struct {
	PublicKeyPath string // Key to import first; empty means use the engine's keyring
	ArtifactPath  string
	SignaturePath string
	Home          string // Caller supplied keyring home; empty means a scoped temporary one
}

// SignatureFailure is the engine's diagnostic for a signature that did not verify
type SignatureFailure struct {
	Reason string
}

// KeyImportError reports that a public key could not be brought into a keyring home
type KeyImportError struct {
	KeyPath string
	Err     error
}

func (e *KeyImportError) Error() string {
	return fmt.Sprintf("failed to import public key %s: %v", e.KeyPath, e.Err)
}

func (e *KeyImportError) Unwrap() error {
	return e.Err
}
