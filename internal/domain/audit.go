package domain

import "time"

type AuditActorType string

const (
	// AuditSystemCaseID is the reserved case identifier for global audit events.
	AuditSystemCaseID = "__system__"
	AuditChainVersion = "custody_chain_v1"

	AuditActorSystem  AuditActorType = "system"
	AuditActorService AuditActorType = "service"
	AuditActorUser    AuditActorType = "user"
)

type AuditEventType string

const (
	AuditEventEvidenceSubmitted  AuditEventType = "evidence_submitted"
	AuditEventEvidenceAnchored   AuditEventType = "evidence_anchored"
	AuditEventEvidenceConfirmed  AuditEventType = "evidence_confirmed"
	AuditEventEvidenceRetrieved  AuditEventType = "evidence_retrieved"
	AuditEventIntegrityViolation AuditEventType = "integrity_violation"
	AuditEventSyncCompleted      AuditEventType = "sync_completed"
	AuditEventCaseExported       AuditEventType = "case_exported"
)

type AuditTargetType string

const (
	AuditTargetEvidence AuditTargetType = "evidence"
	AuditTargetCase     AuditTargetType = "case"
)

type AuditResult string

const (
	AuditResultSuccess AuditResult = "success"
	AuditResultFailure AuditResult = "failure"
)

// AuditEvent is one link in the per-case custody chain. EventHash covers the
// canonical form of (version, case, seq, type, payload hash, prev hash,
// created_at); PrevEventHash of the first event is 64 zeros.
type AuditEvent struct {
	ID            string
	CaseID        string
	Seq           int64
	EventType     AuditEventType
	Payload       any
	PayloadHash   string
	ActorType     AuditActorType
	ActorIDHash   string
	TargetType    AuditTargetType
	TargetID      string
	Result        AuditResult
	ErrorCode     string
	PrevEventHash string
	EventHash     string
	CreatedAt     time.Time
}
