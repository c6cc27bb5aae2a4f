package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

// AuditEmitter appends custody events best effort: a failed append is logged,
// never propagated, so audit trouble cannot fail the evidence operation that
// already happened.
type AuditEmitter struct {
	Sink AuditSink
}

func (e *AuditEmitter) Emit(ctx context.Context, event domain.AuditEvent, principal domain.Principal) {
	if e == nil || e.Sink == nil {
		return
	}
	if event.ActorType == "" {
		event.ActorType = domain.AuditActorUser
	}
	if principal.Subject != "" && event.ActorIDHash == "" {
		event.ActorIDHash = subjectHash(principal.Subject)
	}
	if _, err := e.Sink.Append(ctx, event); err != nil {
		log.Printf("audit append failed: case=%s type=%s err=%v", event.CaseID, event.EventType, err)
	}
}

// subjectHash keeps raw caller identifiers out of the audit table.
func subjectHash(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}
