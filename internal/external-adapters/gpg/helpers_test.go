package gpg

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/require"
)

var testKeyConfig = &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA}

func newSigner(t *testing.T, name string) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity(name, "test", name+"@example.org", testKeyConfig)
	require.NoError(t, err)
	return entity
}

func writePublicKey(t *testing.T, path string, entity *openpgp.Entity, armored bool) {
	t.Helper()
	var buf bytes.Buffer
	if armored {
		w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
		require.NoError(t, err)
		require.NoError(t, entity.Serialize(w))
		require.NoError(t, w.Close())
	} else {
		require.NoError(t, entity.Serialize(&buf))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func signDetached(t *testing.T, entity *openpgp.Entity, data []byte, armored bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	if armored {
		require.NoError(t, openpgp.ArmoredDetachSign(&buf, entity, bytes.NewReader(data), testKeyConfig))
	} else {
		require.NoError(t, openpgp.DetachSign(&buf, entity, bytes.NewReader(data), testKeyConfig))
	}
	return buf.Bytes()
}

// signedArtifact writes an artifact and its detached signature into dir
func signedArtifact(t *testing.T, dir string, entity *openpgp.Entity, armored bool) (string, string) {
	t.Helper()
	data := []byte("package contents\n")
	artifact := filepath.Join(dir, "foo-1.2.3.tar.gz")
	require.NoError(t, os.WriteFile(artifact, data, 0o600))
	sig := artifact + ".asc"
	require.NoError(t, os.WriteFile(sig, signDetached(t, entity, data, armored), 0o600))
	return artifact, sig
}

func scopedHomes(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "tmp.gpghome*"))
	require.NoError(t, err)
	return matches
}
