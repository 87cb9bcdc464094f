package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures across the engine. Every error raised by the
// core carries exactly one of the three kind tags; service errors additionally
// carry ErrTagRetryable when the failure is transient.
var (
	// ErrTagValidation marks bad caller input. Never retried.
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagService marks AI backend failures (network error, non-2xx status,
	// malformed response).
	ErrTagService = goerr.NewTag("service")

	// ErrTagPersistence marks storage read/write/parse failures.
	ErrTagPersistence = goerr.NewTag("persistence")

	// ErrTagRetryable marks a service error as transient and eligible for
	// automatic re-attempt.
	ErrTagRetryable = goerr.NewTag("retryable")
)

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return goerr.HasTag(err, ErrTagValidation)
}

// IsService reports whether err is an AI backend error
func IsService(err error) bool {
	return goerr.HasTag(err, ErrTagService)
}

// IsPersistence reports whether err is a storage error
func IsPersistence(err error) bool {
	return goerr.HasTag(err, ErrTagPersistence)
}

// IsRetryable reports whether err may be retried. A service error is
// retryable only when explicitly tagged so. Untagged errors default to
// retryable: failures of unknown provenance exhaust the attempt budget
// rather than aborting early.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if goerr.HasTag(err, ErrTagValidation) {
		return false
	}
	if goerr.HasTag(err, ErrTagService) {
		return goerr.HasTag(err, ErrTagRetryable)
	}
	return true
}
