package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileSuffix is the extension of public key files in the keyring directory
const KeyFileSuffix = ".pkey"

// KeyringResolver finds trusted public keys in a directory of <KEYID>.pkey files.
// Membership in the directory is the only trust decision made.
type KeyringResolver struct {
	dir string
}

// NewKeyringResolver creates a resolver over dir
func NewKeyringResolver(dir string) *KeyringResolver {
	return &KeyringResolver{dir: dir}
}

// KeyPath returns where the key for keyID would live, without checking it exists
func (r *KeyringResolver) KeyPath(keyID string) string {
	return filepath.Join(r.dir, strings.ToUpper(keyID)+KeyFileSuffix)
}

// Resolve returns the path of the trusted key for keyID
func (r *KeyringResolver) Resolve(keyID string) (string, error) {
	if !isHexKeyID(keyID) {
		return "", fmt.Errorf("invalid key id %q", keyID)
	}

	path := r.KeyPath(keyID)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("public key %s not in keyring: %w", strings.ToUpper(keyID), err)
	}
	if info.IsDir() || info.Size() == 0 {
		return "", fmt.Errorf("public key %s is not a usable file: %s", strings.ToUpper(keyID), path)
	}
	return path, nil
}

// isHexKeyID accepts short (8), long (16) and fingerprint (40/64) hex ids
func isHexKeyID(id string) bool {
	switch len(id) {
	case 8, 16, 40, 64:
	default:
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
