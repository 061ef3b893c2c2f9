// Package gateways provides implementations of domain gateway interfaces.
package gateways

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

// ChecksumVerifier computes SHA-256 digests by reading fixed-size blocks,
// so memory use is bounded regardless of file size
type ChecksumVerifier struct {
	blockSize int
}

// NewChecksumVerifier creates a checksum verifier reading blockSize bytes at a time.
// Non-positive sizes fall back to the default.
func NewChecksumVerifier(blockSize int) *ChecksumVerifier {
	if blockSize <= 0 {
		blockSize = entities.DefaultBlockSize
	}
	return &ChecksumVerifier{blockSize: blockSize}
}

// FileSHA256 calculates the SHA-256 checksum of a file
func (v *ChecksumVerifier) FileSHA256(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return v.Sum(f)
}

// Sum hashes everything r yields
func (v *ChecksumVerifier) Sum(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, v.blockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to hash file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
