package entities

import (
	"github.com/jmgilman/go/errors"
)

// Verification error codes
const (
	CodeMissingArtifact      errors.ErrorCode = "MISSING_ARTIFACT"
	CodeMissingSignature     errors.ErrorCode = "MISSING_SIGNATURE"
	CodeUnparseableSignature errors.ErrorCode = "UNPARSEABLE_SIGNATURE"
	CodeUntrustedKey         errors.ErrorCode = "UNTRUSTED_KEY"
	CodeKeyImportFailed      errors.ErrorCode = "KEY_IMPORT_FAILED"
	CodeEngineFailure        errors.ErrorCode = "ENGINE_FAILURE"
	CodeSignatureMismatch    errors.ErrorCode = "SIGNATURE_MISMATCH"
	CodeChecksumMismatch     errors.ErrorCode = "CHECKSUM_MISMATCH"
	CodeRegistryLookup       errors.ErrorCode = "REGISTRY_LOOKUP_FAILED"
	CodeAmbiguousVersion     errors.ErrorCode = "AMBIGUOUS_VERSION"
	CodeUnsupportedPackage   errors.ErrorCode = "UNSUPPORTED_PACKAGE"
)

// IsMismatch reports whether a code means the trust material was obtained and
// the artifact did not match it. Every other code leaves the result undecided.
func IsMismatch(code errors.ErrorCode) bool {
	return code == CodeSignatureMismatch || code == CodeChecksumMismatch
}
