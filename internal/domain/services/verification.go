// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"fmt"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/services"
)

// Dependencies are the collaborators shared by all strategies
type Dependencies struct {
	Fetcher    gateways.Fetcher
	Digester   gateways.Digester
	KeyIDs     gateways.KeyIDExtractor
	Keyring    gateways.KeyringResolver
	Engine     gateways.SignatureEngine
	Registry   gateways.RegistryGateway
	NameParser NameParser
	Logger     interfaces.Logger
}

// StrategyFactory builds a strategy bound to one package
type StrategyFactory func(ref entities.PackageRef) services.Strategy

// verificationService dispatches on file extension through a closed table
type verificationService struct {
	factories map[string]StrategyFactory
	logger    interfaces.Logger
}

// NewVerificationService creates the service with the built-in extension table:
// ".gz" is verified by detached signature, ".gem" by registry digest.
func NewVerificationService(deps Dependencies) services.VerificationService {
	if deps.Logger == nil {
		deps.Logger = &interfaces.NoOpLogger{}
	}
	if deps.NameParser == nil {
		deps.NameParser = GemFilenameParser{}
	}

	return NewVerificationServiceWithFactories(map[string]StrategyFactory{
		".gz": func(ref entities.PackageRef) services.Strategy {
			return newSignatureStrategy(ref, deps)
		},
		".gem": func(ref entities.PackageRef) services.Strategy {
			return newRegistryDigestStrategy(ref, deps)
		},
	}, deps.Logger)
}

// NewVerificationServiceWithFactories creates a service with a custom table
// This is useful for testing or for embedding the dispatcher elsewhere
func NewVerificationServiceWithFactories(factories map[string]StrategyFactory, logger interfaces.Logger) services.VerificationService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	table := make(map[string]StrategyFactory, len(factories))
	for ext, f := range factories {
		table[ext] = f
	}
	return &verificationService{factories: table, logger: logger}
}

// Select returns a fresh strategy for the package's extension
func (s *verificationService) Select(ref entities.PackageRef) (services.Strategy, bool) {
	factory, ok := s.factories[ref.Ext()]
	if !ok {
		return nil, false
	}
	return factory(ref), true
}

// Verify runs the strategy registered for the package's extension
func (s *verificationService) Verify(ctx context.Context, ref entities.PackageRef) entities.Outcome {
	strategy, ok := s.Select(ref)
	if !ok {
		s.logger.Warn("no verifier for file type",
			interfaces.F("package", ref.Path),
			interfaces.F("ext", ref.Ext()),
		)
		return entities.Indeterminate(ref, "", entities.CodeUnsupportedPackage,
			fmt.Sprintf("file %s is not verifiable (yet)", ref.DisplayName()))
	}

	s.logger.Info("verification started",
		interfaces.F("package", ref.Path),
		interfaces.F("method", strategy.Method()),
	)

	outcome := strategy.Verify(ctx)

	s.logger.Info("verification finished",
		interfaces.F("package", ref.Path),
		interfaces.F("status", outcome.Status.String()),
		interfaces.F("code", string(outcome.Code)),
	)
	return outcome
}
