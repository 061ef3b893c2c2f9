// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

// Strategy verifies one package with one method. Each instance is bound to a
// single PackageRef and used once.
type Strategy interface {
	Method() string
	Verify(ctx context.Context) entities.Outcome
}

// VerificationService selects and runs the verification strategy for a package
type VerificationService interface {
	// Select returns a fresh strategy for the package's extension
	Select(ref entities.PackageRef) (Strategy, bool)

	// Verify runs the selected strategy, or reports Indeterminate when the
	// extension has no strategy
	Verify(ctx context.Context, ref entities.PackageRef) entities.Outcome
}
