package domain

import (
	"context"
	"time"
)

type EvidenceStatus string

const (
	EvidenceStatusSubmitted   EvidenceStatus = "submitted"
	EvidenceStatusConfirmed   EvidenceStatus = "confirmed"
	EvidenceStatusQuarantined EvidenceStatus = "quarantined"
)

type EvidenceType string

const (
	EvidenceTypeImage    EvidenceType = "Image"
	EvidenceTypeVideo    EvidenceType = "Video"
	EvidenceTypeDocument EvidenceType = "Document"
	EvidenceTypeAudio    EvidenceType = "Audio"
	EvidenceTypeOther    EvidenceType = "Other"
)

// evidenceTypeCodes is the on-chain encoding of EvidenceType. The codes are
// part of the ledger contract ABI and must never be renumbered.
var evidenceTypeCodes = map[EvidenceType]uint8{
	EvidenceTypeImage:    0,
	EvidenceTypeVideo:    1,
	EvidenceTypeDocument: 2,
	EvidenceTypeAudio:    3,
	EvidenceTypeOther:    4,
}

func (t EvidenceType) Code() (uint8, bool) {
	code, ok := evidenceTypeCodes[t]
	return code, ok
}

func ParseEvidenceType(s string) (EvidenceType, bool) {
	t := EvidenceType(s)
	_, ok := evidenceTypeCodes[t]
	return t, ok
}

// EvidenceRecord is the off-chain half of an evidence item: the content
// address of the pinned ciphertext plus the wrapped key material needed to
// decrypt it. Records are append-only; only Status may change after creation.
type EvidenceRecord struct {
	CaseID           string
	EvidenceID       string
	CID              string
	HashOriginal     string
	OriginalFilename string
	KeyEncrypted     string
	IVEncrypted      string
	KeyIVEncrypted   string
	Description      string
	EvidenceType     EvidenceType
	Status           EvidenceStatus
	SubmittedBy      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EvidenceRepository interface {
	// Create rejects a duplicate (caseID, evidenceID) with ErrDuplicateEvidence.
	Create(ctx context.Context, record EvidenceRecord) error
	Get(ctx context.Context, caseID, evidenceID string) (*EvidenceRecord, error)
	List(ctx context.Context) ([]EvidenceRecord, error)
	UpdateStatus(ctx context.Context, caseID, evidenceID string, status EvidenceStatus) error
}

// PendingPinStage tracks how far an upload progressed after the ciphertext
// was pinned. Markers survive crashes so a reconciliation pass can retry or
// garbage-collect orphaned pins.
type PendingPinStage string

const (
	PendingPinStagePinned   PendingPinStage = "pinned"
	PendingPinStageRecorded PendingPinStage = "recorded"
	PendingPinStageAnchored PendingPinStage = "anchored"
)

type PendingPin struct {
	CaseID     string
	EvidenceID string
	CID        string
	Stage      PendingPinStage
	TxHash     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PendingPinRepository interface {
	Put(ctx context.Context, pin PendingPin) error
	Resolve(ctx context.Context, caseID, evidenceID string) error
	ListUnresolved(ctx context.Context) ([]PendingPin, error)
}

// ObjectStore is the content-addressed pinning network. Pin either fully
// succeeds, returning a CID usable thereafter, or fails leaving nothing
// retrievable.
type ObjectStore interface {
	Pin(ctx context.Context, ciphertext []byte, name, originalFilename string) (string, error)
	Fetch(ctx context.Context, cid string) ([]byte, error)
}
