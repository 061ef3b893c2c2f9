package services

import (
	"context"
	"net/http"
	"os"

	"github.com/jmgilman/go/errors"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/gateways"
)

// signatureStrategy verifies a package against its detached OpenPGP signature.
// Steps run in order and the first failing step decides the outcome.
type signatureStrategy struct {
	ref  entities.PackageRef
	deps Dependencies
}

func newSignatureStrategy(ref entities.PackageRef, deps Dependencies) *signatureStrategy {
	return &signatureStrategy{ref: ref, deps: deps}
}

// Method returns the verification method name
func (s *signatureStrategy) Method() string {
	return entities.MethodGPG
}

// Verify runs the signature check and collapses any failure into an outcome
func (s *signatureStrategy) Verify(ctx context.Context) entities.Outcome {
	return entities.OutcomeFromError(s.ref, entities.MethodGPG, s.run(ctx))
}

func (s *signatureStrategy) run(ctx context.Context) error {
	if !fileExists(s.ref.Path) {
		return errors.Newf(entities.CodeMissingArtifact, "artifact not found: %s", s.ref.Path)
	}

	sigPath, err := s.locateSignature(ctx)
	if err != nil {
		return err
	}

	keyID, err := s.deps.KeyIDs.ExtractKeyID(ctx, sigPath)
	if err != nil {
		return errors.Wrap(err, entities.CodeUnparseableSignature, "unparseable signature")
	}
	s.deps.Logger.Debug("signature key id", interfaces.F("keyid", keyID))

	req, err := s.trustRequest(keyID)
	if err != nil {
		return err
	}
	req.ArtifactPath = s.ref.Path
	req.SignaturePath = sigPath

	failure, err := s.deps.Engine.Verify(ctx, req)
	if err != nil {
		var importErr *entities.KeyImportError
		if errors.As(err, &importErr) {
			return errors.Wrap(err, entities.CodeKeyImportFailed, "trust material could not be established")
		}
		return errors.Wrapf(err, entities.CodeEngineFailure, "%s engine failed", s.deps.Engine.Name())
	}
	if failure != nil {
		return errors.New(entities.CodeSignatureMismatch, failure.Reason)
	}

	return nil
}

// locateSignature returns the local signature path, fetching it when missing.
// A fetched signature stays at <package>.asc for later runs.
func (s *signatureStrategy) locateSignature(ctx context.Context) (string, error) {
	sigPath := s.ref.SignatureFile()
	if fileExists(sigPath) {
		return sigPath, nil
	}

	source := s.ref.SignatureSource()
	if source == "" {
		return "", errors.Newf(entities.CodeMissingSignature, "signature not found: %s", sigPath)
	}

	s.deps.Logger.Info("fetching signature",
		interfaces.F("url", source),
		interfaces.F("dest", sigPath),
	)

	status := s.deps.Fetcher.Fetch(ctx, source, sigPath)
	if status == gateways.NoStatus {
		return "", errors.Newf(entities.CodeMissingSignature, "unable to download file %s: transport error", source)
	}
	if status != http.StatusOK {
		return "", errors.Newf(entities.CodeMissingSignature, "unable to download file %s http code %d", source, status)
	}

	return sigPath, nil
}

// trustRequest names the key the engine verifies with. An explicit key skips
// the keyring lookup and is imported into the caller's home when one is given.
// A keyring key is always imported into a scoped home, so the caller's home is
// never written for it.
func (s *signatureStrategy) trustRequest(keyID string) (entities.SignatureRequest, error) {
	if s.ref.PublicKeyPath != "" {
		if !fileExists(s.ref.PublicKeyPath) {
			return entities.SignatureRequest{}, errors.Newf(entities.CodeUntrustedKey, "public key not found: %s", s.ref.PublicKeyPath)
		}
		return entities.SignatureRequest{PublicKeyPath: s.ref.PublicKeyPath, Home: s.ref.GnupgHome}, nil
	}

	keyPath, err := s.deps.Keyring.Resolve(keyID)
	if err != nil {
		s.deps.Logger.Debug("keyring lookup failed", interfaces.F("keyid", keyID), interfaces.F("error", err.Error()))
		return entities.SignatureRequest{}, errors.Newf(entities.CodeUntrustedKey, "public key %s not found in keyring", keyID)
	}
	return entities.SignatureRequest{PublicKeyPath: keyPath}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
