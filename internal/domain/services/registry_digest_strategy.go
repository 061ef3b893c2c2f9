package services

import (
	"context"

	"github.com/jmgilman/go/errors"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
)

// registryDigestStrategy verifies a package against the SHA-256 digest its
// registry publishes for the exact version
type registryDigestStrategy struct {
	ref  entities.PackageRef
	deps Dependencies
}

func newRegistryDigestStrategy(ref entities.PackageRef, deps Dependencies) *registryDigestStrategy {
	return &registryDigestStrategy{ref: ref, deps: deps}
}

// Method returns the verification method name
func (s *registryDigestStrategy) Method() string {
	return entities.MethodSHA256
}

// Verify runs the digest comparison and collapses any failure into an outcome
func (s *registryDigestStrategy) Verify(ctx context.Context) entities.Outcome {
	return entities.OutcomeFromError(s.ref, entities.MethodSHA256, s.run(ctx))
}

func (s *registryDigestStrategy) run(ctx context.Context) error {
	if !fileExists(s.ref.Path) {
		return errors.Newf(entities.CodeMissingArtifact, "artifact not found: %s", s.ref.Path)
	}

	coords, err := s.deps.NameParser.Parse(s.ref.Filename())
	if err != nil {
		return errors.Wrap(err, entities.CodeUnsupportedPackage, "cannot derive package name and version")
	}

	releases, err := s.deps.Registry.ListReleases(ctx, coords.Name)
	if err != nil {
		return errors.Wrapf(err, entities.CodeRegistryLookup, "unable to parse info for gem %s", coords.Name)
	}

	expected, err := selectRelease(releases, coords)
	if err != nil {
		return err
	}

	actual, err := s.deps.Digester.FileSHA256(s.ref.Path)
	if err != nil {
		return errors.Wrap(err, entities.CodeMissingArtifact, "cannot read artifact")
	}

	s.deps.Logger.Debug("comparing digests",
		interfaces.F("expected", expected.SHA256),
		interfaces.F("actual", actual),
	)

	if actual != expected.SHA256 {
		return errors.New(entities.CodeChecksumMismatch, "checksum mismatch")
	}
	return nil
}

// selectRelease returns the single release matching version and platform exactly
func selectRelease(releases []entities.RegistryRelease, coords entities.PackageCoordinates) (entities.RegistryRelease, error) {
	var matches []entities.RegistryRelease
	for _, r := range releases {
		if r.Number == coords.Version && r.EffectivePlatform() == coords.Platform {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return entities.RegistryRelease{}, errors.Newf(entities.CodeRegistryLookup,
			"version not found: %s %s (%s)", coords.Name, coords.Version, coords.Platform)
	case 1:
		if matches[0].SHA256 == "" {
			return entities.RegistryRelease{}, errors.Newf(entities.CodeRegistryLookup,
				"registry publishes no digest for %s %s", coords.Name, coords.Version)
		}
		return matches[0], nil
	default:
		return entities.RegistryRelease{}, errors.Newf(entities.CodeAmbiguousVersion,
			"version not found: %s %s (%s) matches %d releases", coords.Name, coords.Version, coords.Platform, len(matches))
	}
}
