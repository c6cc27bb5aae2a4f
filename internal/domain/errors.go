package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidMimeType   = errors.New("file type not allowed")
	ErrMissingUpload     = errors.New("missing required data")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEvidence = errors.New("evidence already exists")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrIntegrityMismatch = errors.New("evidence integrity verification failed")
)

// ChainRejectedError is the ledger's business-rule refusal. Reason carries the
// revert string exactly as the chain produced it; callers surface it verbatim
// for audit and never retry.
type ChainRejectedError struct {
	Reason string
}

func (e *ChainRejectedError) Error() string {
	if e == nil || e.Reason == "" {
		return "chain rejected"
	}
	return e.Reason
}

// NetworkError marks a transient transport failure at the storage or ledger
// boundary. Retryable; the pinning client retries these internally.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return "network error"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
