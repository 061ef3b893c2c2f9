// Package gateways defines the contracts for external collaborators of the verifier.
package gateways

import (
	"context"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

// NoStatus is returned by a Fetcher when no HTTP status was obtained
const NoStatus = -1

// Fetcher downloads a remote resource to a local path
type Fetcher interface {
	// Fetch streams url into dest and returns the final HTTP status code,
	// or NoStatus on a transport error. dest never holds a partial file
	// unless the status is 200.
	Fetch(ctx context.Context, url, dest string) int
}

// Digester computes file digests
type Digester interface {
	// FileSHA256 returns the lowercase hex SHA-256 of a file
	FileSHA256(path string) (string, error)
}

// KeyIDExtractor recovers the signer key identifier from a detached signature
// without verifying it
type KeyIDExtractor interface {
	ExtractKeyID(ctx context.Context, signaturePath string) (string, error)
}

// KeyringResolver maps a key identifier to a trusted public key file
type KeyringResolver interface {
	Resolve(keyID string) (string, error)
}

// SignatureEngine verifies detached OpenPGP signatures.
// A nil failure and nil error means the signature is good. A non-nil error
// means the check could not run; a failed key import is an *entities.KeyImportError.
type SignatureEngine interface {
	Name() string
	Verify(ctx context.Context, req entities.SignatureRequest) (*entities.SignatureFailure, error)
}

// RegistryGateway lists the published releases of a named package
type RegistryGateway interface {
	ListReleases(ctx context.Context, name string) ([]entities.RegistryRelease, error)
}

// Reporter renders verification outcomes
type Reporter interface {
	Begin(ref entities.PackageRef)
	Report(outcome entities.Outcome)
	End(ref entities.PackageRef)
}
