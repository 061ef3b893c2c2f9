package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

type fakeFetcher struct {
	status  int
	content string
	urls    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, dest string) int {
	f.urls = append(f.urls, url)
	if f.status == 200 {
		_ = os.WriteFile(dest, []byte(f.content), 0o600)
	}
	return f.status
}

type fakeDigester struct {
	sum string
	err error
}

func (f *fakeDigester) FileSHA256(_ string) (string, error) {
	return f.sum, f.err
}

type fakeKeyIDs struct {
	keyID string
	err   error
}

func (f *fakeKeyIDs) ExtractKeyID(_ context.Context, _ string) (string, error) {
	return f.keyID, f.err
}

type fakeKeyring struct {
	keys map[string]string
}

func (f *fakeKeyring) Resolve(keyID string) (string, error) {
	if path, ok := f.keys[keyID]; ok {
		return path, nil
	}
	return "", errors.New("not in keyring")
}

type fakeEngine struct {
	failure *entities.SignatureFailure
	err     error
	calls   []entities.SignatureRequest
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Verify(_ context.Context, req entities.SignatureRequest) (*entities.SignatureFailure, error) {
	f.calls = append(f.calls, req)
	return f.failure, f.err
}

type fakeRegistry struct {
	releases []entities.RegistryRelease
	err      error
	names    []string
}

func (f *fakeRegistry) ListReleases(_ context.Context, name string) ([]entities.RegistryRelease, error) {
	f.names = append(f.names, name)
	return f.releases, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
