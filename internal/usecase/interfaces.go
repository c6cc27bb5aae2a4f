package usecase

import (
	"context"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

// EnvelopeEngine wraps the per-file encryption primitives. Satisfied by the
// envelope package's Engine.
type EnvelopeEngine interface {
	NewFileKey() ([]byte, error)
	NewIV() ([]byte, error)
	Encrypt(plaintext, key, iv []byte) ([]byte, error)
	Decrypt(ciphertext, key, iv []byte) ([]byte, error)
	WrapKey(fileKey, wrapIV []byte) (string, error)
	UnwrapKey(keyEncryptedHex string, wrapIV []byte) ([]byte, error)
}

// FilenameResolver looks up the display name recorded with a pin. Best
// effort; an empty result falls back to the stored original filename.
type FilenameResolver interface {
	PinnedFilename(ctx context.Context, cid string) string
}

type AuditSink interface {
	Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.AuditEvent, error)
}
