// Package gpghome provides keyring home directories scoped to one verification.
package gpghome

import (
	"fmt"
	"os"
)

// TempPrefix is the name prefix of scoped keyring directories
const TempPrefix = "tmp.gpghome"

// Home is a keyring directory acquired for one verification
type Home struct {
	Dir     string
	scoped  bool
	release func() error
}

// Acquire returns the caller supplied home unchanged, or creates a fresh private
// directory under parent (os.TempDir() when empty). Release must be deferred
// right after a successful Acquire.
func Acquire(home, parent string) (*Home, error) {
	if home != "" {
		return &Home{Dir: home}, nil
	}

	dir, err := os.MkdirTemp(parent, TempPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyring home: %w", err)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to secure keyring home: %w", err)
	}

	return &Home{
		Dir:     dir,
		scoped:  true,
		release: func() error { return os.RemoveAll(dir) },
	}, nil
}

// Scoped reports whether the directory is removed on Release
func (h *Home) Scoped() bool {
	return h.scoped
}

// Release removes a scoped directory. Caller supplied homes are left alone.
func (h *Home) Release() error {
	if h == nil || !h.scoped {
		return nil
	}
	return h.release()
}
