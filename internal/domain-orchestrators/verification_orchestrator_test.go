package orchestrators

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pkgverify/internal/domain-adapters/gateways"
	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/services"
	"github.com/ochairo/pkgverify/internal/external-adapters/gpg"
)

// recordingReporter keeps the order of reporter calls
type recordingReporter struct {
	events   []string
	outcomes []entities.Outcome
}

func (r *recordingReporter) Begin(_ entities.PackageRef) { r.events = append(r.events, "begin") }
func (r *recordingReporter) End(_ entities.PackageRef)   { r.events = append(r.events, "end") }
func (r *recordingReporter) Report(o entities.Outcome) {
	r.events = append(r.events, "report")
	r.outcomes = append(r.outcomes, o)
}

type scenario struct {
	cfg      entities.Config
	dir      string
	reporter *recordingReporter
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	dir := t.TempDir()
	cfg := entities.DefaultConfig()
	cfg.KeyringDir = filepath.Join(dir, "keyring")
	cfg.TempDir = t.TempDir()
	cfg.Engine = entities.EngineNative
	require.NoError(t, os.Mkdir(cfg.KeyringDir, 0o700))
	return &scenario{cfg: cfg, dir: dir, reporter: &recordingReporter{}}
}

func (s *scenario) run(t *testing.T, ref entities.PackageRef) entities.Outcome {
	t.Helper()
	composite, err := gateways.NewCompositeGateway(s.cfg, gateways.EngineOptions{}, nil)
	require.NoError(t, err)

	svc := services.NewVerificationService(services.Dependencies{
		Fetcher:  composite.Fetcher,
		Digester: composite.Digester,
		KeyIDs:   composite.Engines.KeyIDs,
		Keyring:  composite.Keyring,
		Engine:   composite.Engines.Engine,
		Registry: composite.Registry,
	})

	result := NewVerificationOrchestrator(svc, s.reporter, nil).Run(context.Background(), ref)
	require.NotNil(t, result)
	return result.Outcome
}

// signedTarball writes foo-1.2.3.tar.gz with a detached signature and puts the
// signer's key into the keyring directory
func (s *scenario) signedTarball(t *testing.T, armored bool) string {
	t.Helper()
	cfg := &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA}
	signer, err := openpgp.NewEntity("Release", "", "release@example.org", cfg)
	require.NoError(t, err)

	data := []byte("tarball bytes\n")
	path := filepath.Join(s.dir, "foo-1.2.3.tar.gz")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var sig bytes.Buffer
	if armored {
		require.NoError(t, openpgp.ArmoredDetachSign(&sig, signer, bytes.NewReader(data), cfg))
	} else {
		require.NoError(t, openpgp.DetachSign(&sig, signer, bytes.NewReader(data), cfg))
	}
	require.NoError(t, os.WriteFile(path+".asc", sig.Bytes(), 0o600))

	var key bytes.Buffer
	w, err := armor.Encode(&key, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, signer.Serialize(w))
	require.NoError(t, w.Close())
	keyFile := filepath.Join(s.cfg.KeyringDir, gpg.FormatKeyID(signer.PrimaryKey.KeyId)+gateways.KeyFileSuffix)
	require.NoError(t, os.WriteFile(keyFile, key.Bytes(), 0o600))

	return path
}

func TestScenario_SignedTarballVerified(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, true)

	outcome := s.run(t, entities.NewPackageRef(path))

	assert.Equal(t, entities.StatusVerified, outcome.Status, outcome.Reason)
	assert.Equal(t, []string{"begin", "report", "end"}, s.reporter.events)
	assert.Len(t, s.reporter.outcomes, 1)

	leftovers, err := filepath.Glob(filepath.Join(s.cfg.TempDir, "tmp.gpghome*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestScenario_FlippedTarballFails(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, true)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[3] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o600))

	outcome := s.run(t, entities.NewPackageRef(path))

	assert.Equal(t, entities.StatusFailed, outcome.Status)
	assert.Equal(t, entities.CodeSignatureMismatch, outcome.Code)
	assert.NotEmpty(t, outcome.Reason)
}

func TestScenario_FlippedSignatureFails(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, false)

	sig, err := os.ReadFile(path + ".asc")
	require.NoError(t, err)
	sig[len(sig)-1] ^= 0x01
	require.NoError(t, os.WriteFile(path+".asc", sig, 0o600))

	outcome := s.run(t, entities.NewPackageRef(path))

	assert.Equal(t, entities.StatusFailed, outcome.Status, outcome.Reason)
	assert.Equal(t, entities.CodeSignatureMismatch, outcome.Code)
}

func TestScenario_UnknownSignerIsIndeterminate(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, true)

	keys, err := filepath.Glob(filepath.Join(s.cfg.KeyringDir, "*.pkey"))
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, os.Remove(k))
	}

	outcome := s.run(t, entities.NewPackageRef(path))

	assert.Equal(t, entities.StatusIndeterminate, outcome.Status)
	assert.Equal(t, entities.CodeUntrustedKey, outcome.Code)
}

func TestScenario_ExplicitKeyWithUnparseableSignature(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, true)
	require.NoError(t, os.WriteFile(path+".asc", []byte("this is not an openpgp signature"), 0o600))

	keys, err := filepath.Glob(filepath.Join(s.cfg.KeyringDir, "*.pkey"))
	require.NoError(t, err)
	require.Len(t, keys, 1)

	ref := entities.NewPackageRef(path)
	ref.PublicKeyPath = keys[0]
	outcome := s.run(t, ref)

	assert.Equal(t, entities.StatusIndeterminate, outcome.Status, outcome.Reason)
	assert.Equal(t, entities.CodeUnparseableSignature, outcome.Code)
}

func TestScenario_KeyringRunsLeaveCallerHomeUntouched(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, true)
	home := t.TempDir()

	ref := entities.NewPackageRef(path)
	ref.GnupgHome = home
	for i := 0; i < 3; i++ {
		outcome := s.run(t, ref)
		require.Equal(t, entities.StatusVerified, outcome.Status, outcome.Reason)
	}

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScenario_SignatureFetchedFromURL(t *testing.T) {
	s := newScenario(t)
	path := s.signedTarball(t, true)

	sig, err := os.ReadFile(path + ".asc")
	require.NoError(t, err)
	require.NoError(t, os.Remove(path+".asc"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dist/foo-1.2.3.tar.gz.asc" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(sig)
	}))
	defer server.Close()

	ref := entities.PackageRefFromURL(server.URL+"/dist/foo-1.2.3.tar.gz", s.dir)
	outcome := s.run(t, ref)

	assert.Equal(t, entities.StatusVerified, outcome.Status, outcome.Reason)
	assert.FileExists(t, path+".asc")
}

func gemRegistry(t *testing.T, sha string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bar.json") {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, `[{"number":"2.0.0","platform":"ruby","sha":%q},{"number":"1.0.0","platform":"ruby","sha":"00"}]`, sha)
	}))
	t.Cleanup(server.Close)
	return server.URL + "/api/v1/versions/{name}.json"
}

func TestScenario_GemDigest(t *testing.T) {
	content := []byte("gem bytes")
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	tests := []struct {
		name       string
		published  string
		wantStatus entities.OutcomeStatus
	}{
		{name: "matching digest", published: digest, wantStatus: entities.StatusVerified},
		{name: "different digest", published: strings.Repeat("ab", 32), wantStatus: entities.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScenario(t)
			s.cfg.RegistryURL = gemRegistry(t, tt.published)
			path := filepath.Join(s.dir, "bar-2.0.0.gem")
			require.NoError(t, os.WriteFile(path, content, 0o600))

			outcome := s.run(t, entities.NewPackageRef(path))

			assert.Equal(t, tt.wantStatus, outcome.Status, outcome.Reason)
			assert.Equal(t, entities.MethodSHA256, outcome.Method)
		})
	}
}

func TestScenario_UnsupportedExtension(t *testing.T) {
	s := newScenario(t)
	path := filepath.Join(s.dir, "foo-1.2.3.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))

	outcome := s.run(t, entities.NewPackageRef(path))

	assert.Equal(t, entities.StatusIndeterminate, outcome.Status)
	assert.Equal(t, "file foo-1.2.3.zip is not verifiable (yet)", outcome.Reason)
	assert.Equal(t, []string{"begin", "report", "end"}, s.reporter.events)
}
