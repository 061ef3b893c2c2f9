package gpg

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// maxSignatureSize bounds how much of a signature file is read
const maxSignatureSize = 64 * 1024

// KeyIDExtractor reads the issuer key id from signature packets with go-crypto
type KeyIDExtractor struct{}

// NewKeyIDExtractor creates a packet based key id extractor
func NewKeyIDExtractor() *KeyIDExtractor {
	return &KeyIDExtractor{}
}

// ExtractKeyID returns the upper-case 16 hex digit issuer key id of a detached
// signature. Signatures without an issuer, or whose packets name more than one
// issuer, are rejected.
func (x *KeyIDExtractor) ExtractKeyID(_ context.Context, signaturePath string) (string, error) {
	//nolint:gosec // G304: signaturePath is user-provided for GPG verification
	f, err := os.Open(signaturePath)
	if err != nil {
		return "", fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSignatureSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read signature: %w", err)
	}
	if len(data) > maxSignatureSize {
		return "", fmt.Errorf("signature file larger than %d bytes", maxSignatureSize)
	}

	return KeyIDFromSignature(data)
}

// KeyIDFromSignature parses armored or binary signature bytes
func KeyIDFromSignature(data []byte) (string, error) {
	var body io.Reader = bytes.NewReader(data)
	if isArmored(data) {
		block, err := armor.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to decode armor: %w", err)
		}
		body = block.Body
	}

	ids := make(map[uint64]struct{})
	reader := packet.NewReader(body)
	for {
		p, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse signature packet: %w", err)
		}

		sig, ok := p.(*packet.Signature)
		if !ok {
			continue
		}
		id, ok := issuerKeyID(sig)
		if !ok {
			continue
		}
		ids[id] = struct{}{}
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no issuer key id in signature")
	case 1:
		for id := range ids {
			return FormatKeyID(id), nil
		}
	}
	return "", fmt.Errorf("signature names %d different issuers", len(ids))
}

// FormatKeyID renders a key id the way keyring files are named
func FormatKeyID(id uint64) string {
	return fmt.Sprintf("%016X", id)
}

// issuerKeyID prefers the issuer subpacket and falls back to the low 64 bits of
// a v4 issuer fingerprint
func issuerKeyID(sig *packet.Signature) (uint64, bool) {
	if sig.IssuerKeyId != nil {
		return *sig.IssuerKeyId, true
	}
	if n := len(sig.IssuerFingerprint); n == 20 {
		return binary.BigEndian.Uint64(sig.IssuerFingerprint[n-8:]), true
	}
	return 0, false
}
