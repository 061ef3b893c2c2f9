package gnupg

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// KeyIDExtractor reads the issuer key id from `gpg --list-packets` output
type KeyIDExtractor struct {
	binary string
	runner Runner
}

// NewKeyIDExtractor creates an extractor running binary
func NewKeyIDExtractor(binary string, runner Runner) *KeyIDExtractor {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &KeyIDExtractor{binary: binary, runner: runner}
}

// ExtractKeyID lists the signature's packets and returns its issuer key id in upper case
func (x *KeyIDExtractor) ExtractKeyID(ctx context.Context, signaturePath string) (string, error) {
	result, err := x.runner.Run(ctx, nil, x.binary, "--batch", "--no-tty", "--list-packets", signaturePath)
	if result == nil || result.ExitCode != 0 {
		msg := ""
		if result != nil {
			msg = strings.TrimSpace(result.Stderr)
		}
		if msg == "" && err != nil {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s --list-packets failed: %s", x.binary, msg)
	}

	return ParseListPackets(result.Stdout)
}

// ParseListPackets extracts the token following the "keyid" label of the
// signature packets in `gpg --list-packets` output. Output without such a
// label, or with signature packets from different keys, is rejected.
func ParseListPackets(out string) (string, error) {
	var found string

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ":signature packet:") {
			continue
		}

		keyID, ok := labeledToken(line, "keyid")
		if !ok {
			continue
		}
		if !isHex(keyID) {
			return "", fmt.Errorf("malformed keyid %q", keyID)
		}

		keyID = strings.ToUpper(keyID)
		if found != "" && found != keyID {
			return "", fmt.Errorf("signature names more than one key: %s, %s", found, keyID)
		}
		found = keyID
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read packet listing: %w", err)
	}

	if found == "" {
		return "", fmt.Errorf("no keyid in packet listing")
	}
	return found, nil
}

// labeledToken returns the whitespace separated token after label
func labeledToken(line, label string) (string, bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == label {
			return fields[i+1], true
		}
	}
	return "", false
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
