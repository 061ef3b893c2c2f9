// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"time"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/services"
)

// VerificationOrchestrator runs one verification and reports its outcome
type VerificationOrchestrator struct {
	service  services.VerificationService
	reporter gateways.Reporter
	logger   interfaces.Logger
}

// NewVerificationOrchestrator creates a new verification orchestrator
func NewVerificationOrchestrator(service services.VerificationService, reporter gateways.Reporter, logger interfaces.Logger) *VerificationOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &VerificationOrchestrator{
		service:  service,
		reporter: reporter,
		logger:   logger,
	}
}

// VerificationResult contains the outcome of a verification run
type VerificationResult struct {
	Outcome  entities.Outcome
	Duration time.Duration
}

// Run verifies ref and hands the outcome to the reporter exactly once,
// bracketed by the reporter's Begin and End
func (o *VerificationOrchestrator) Run(ctx context.Context, ref entities.PackageRef) *VerificationResult {
	startTime := time.Now()

	o.logger.Info("verifying package",
		interfaces.F("package", ref.DisplayName()),
		interfaces.F("path", ref.Path),
	)

	o.reporter.Begin(ref)
	outcome := o.service.Verify(ctx, ref)
	o.reporter.Report(outcome)
	o.reporter.End(ref)

	result := &VerificationResult{
		Outcome:  outcome,
		Duration: time.Since(startTime),
	}

	o.logger.Info("package verified",
		interfaces.F("package", ref.DisplayName()),
		interfaces.F("status", outcome.Status.String()),
		interfaces.F("duration", result.Duration.String()),
	)
	return result
}
