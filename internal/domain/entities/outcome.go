package entities

import (
	"strings"

	"github.com/jmgilman/go/errors"
)

// OutcomeStatus is the tag of a verification outcome
type OutcomeStatus int

const (
	// StatusVerified means the artifact matched its trust material
	StatusVerified OutcomeStatus = iota
	// StatusFailed means the artifact did not match its trust material
	StatusFailed
	// StatusIndeterminate means the check could not be carried out
	StatusIndeterminate
)

func (s OutcomeStatus) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusFailed:
		return "failed"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Verification methods
const (
	MethodGPG    = "gpg"
	MethodSHA256 = "sha256"
)

// Outcome is the terminal result of one verification attempt
type Outcome struct {
	Package PackageRef
	Method  string
	Status  OutcomeStatus
	Code    errors.ErrorCode // Empty when verified
	Reason  string
}

// Verified creates a successful outcome
func Verified(ref PackageRef, method string) Outcome {
	return Outcome{Package: ref, Method: method, Status: StatusVerified}
}

// Failed creates a mismatch outcome
func Failed(ref PackageRef, method string, code errors.ErrorCode, reason string) Outcome {
	return Outcome{Package: ref, Method: method, Status: StatusFailed, Code: code, Reason: reason}
}

// Indeterminate creates an outcome for a check that could not be completed
func Indeterminate(ref PackageRef, method string, code errors.ErrorCode, reason string) Outcome {
	return Outcome{Package: ref, Method: method, Status: StatusIndeterminate, Code: code, Reason: reason}
}

// OutcomeFromError collapses a strategy error into an outcome.
// A nil error is a successful verification.
func OutcomeFromError(ref PackageRef, method string, err error) Outcome {
	if err == nil {
		return Verified(ref, method)
	}

	code := errors.GetCode(err)
	reason := describe(err)

	if IsMismatch(code) {
		return Failed(ref, method, code, reason)
	}
	return Indeterminate(ref, method, code, reason)
}

// describe joins the messages along err's chain without the error codes
// that PlatformError.Error prefixes to each link
func describe(err error) string {
	var parts []string
	for err != nil {
		pe, ok := err.(errors.PlatformError)
		if !ok {
			parts = append(parts, err.Error())
			break
		}
		if msg := pe.Message(); msg != "" {
			parts = append(parts, msg)
		}
		err = pe.Unwrap()
	}
	return strings.Join(parts, ": ")
}

// OK reports whether the artifact was verified
func (o Outcome) OK() bool {
	return o.Status == StatusVerified
}

// ExitCode maps the outcome to a process exit status
func (o Outcome) ExitCode() int {
	switch o.Status {
	case StatusVerified:
		return 0
	case StatusFailed:
		return 1
	default:
		return 2
	}
}
