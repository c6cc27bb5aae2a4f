package usecase

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/intake"
)

type SyncState string

const (
	SyncStateValid          SyncState = "valid"
	SyncStateHashMismatch   SyncState = "hash_mismatch"
	SyncStateMissingOnChain SyncState = "missing_on_chain"
	SyncStateError          SyncState = "error"
)

type SyncItem struct {
	CaseID     string    `json:"caseId"`
	EvidenceID string    `json:"evidenceId"`
	CID        string    `json:"cid"`
	State      SyncState `json:"state"`
	Confirmed  bool      `json:"confirmed"`
	Detail     string    `json:"detail,omitempty"`
}

type SyncReport struct {
	Total          int                 `json:"total"`
	Valid          int                 `json:"valid"`
	HashMismatch   int                 `json:"hashMismatch"`
	MissingOnChain int                 `json:"missingOnChain"`
	Errors         int                 `json:"errors"`
	Items          []SyncItem          `json:"items"`
	PendingPins    []domain.PendingPin `json:"pendingPins"`
}

// SyncEvidence reconciles the three copies of the truth: metadata rows, the
// on-chain anchors, and the pinned ciphertext. It re-derives every record's
// plaintext hash rather than trusting the stored column.
type SyncEvidence struct {
	Evidence domain.EvidenceRepository
	Pins     domain.PendingPinRepository
	Store    domain.ObjectStore
	Ledger   domain.Ledger
	Envelope EnvelopeEngine
	Audit    *AuditEmitter
}

func (uc *SyncEvidence) Execute(ctx context.Context, principal domain.Principal) (*SyncReport, error) {
	records, err := uc.Evidence.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Total: len(records), Items: make([]SyncItem, 0, len(records))}
	for _, record := range records {
		item := uc.checkRecord(ctx, record)
		switch item.State {
		case SyncStateValid:
			report.Valid++
		case SyncStateHashMismatch:
			report.HashMismatch++
		case SyncStateMissingOnChain:
			report.MissingOnChain++
		default:
			report.Errors++
		}
		report.Items = append(report.Items, item)
	}

	pending, err := uc.Pins.ListUnresolved(ctx)
	if err != nil {
		return nil, err
	}
	report.PendingPins = pending

	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    domain.AuditSystemCaseID,
		EventType: domain.AuditEventSyncCompleted,
		Payload: map[string]any{
			"total":            report.Total,
			"valid":            report.Valid,
			"hash_mismatch":    report.HashMismatch,
			"missing_on_chain": report.MissingOnChain,
			"errors":           report.Errors,
			"pending_pins":     len(report.PendingPins),
		},
		ActorType:  domain.AuditActorService,
		TargetType: domain.AuditTargetCase,
		Result:     domain.AuditResultSuccess,
	}, principal)

	return report, nil
}

func (uc *SyncEvidence) checkRecord(ctx context.Context, record domain.EvidenceRecord) SyncItem {
	item := SyncItem{
		CaseID:     record.CaseID,
		EvidenceID: record.EvidenceID,
		CID:        record.CID,
	}

	anchor, err := uc.Ledger.GetEvidenceByID(ctx, record.CaseID, record.EvidenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			item.State = SyncStateMissingOnChain
			return item
		}
		item.State = SyncStateError
		item.Detail = err.Error()
		return item
	}
	item.Confirmed = anchor.Confirmed
	if anchor.CID != record.CID || anchor.HashOriginal != record.HashOriginal {
		item.State = SyncStateHashMismatch
		item.Detail = "on-chain anchor disagrees with stored record"
		uc.quarantine(ctx, record)
		return item
	}

	plaintextHash, err := uc.rehash(ctx, record)
	if err != nil {
		item.State = SyncStateError
		item.Detail = err.Error()
		return item
	}
	if plaintextHash != record.HashOriginal {
		item.State = SyncStateHashMismatch
		item.Detail = "stored ciphertext no longer matches submission hash"
		uc.quarantine(ctx, record)
		return item
	}

	item.State = SyncStateValid
	return item
}

func (uc *SyncEvidence) rehash(ctx context.Context, record domain.EvidenceRecord) (string, error) {
	wrapIV, err := hex.DecodeString(record.KeyIVEncrypted)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	fileKey, err := uc.Envelope.UnwrapKey(record.KeyEncrypted, wrapIV)
	if err != nil {
		return "", err
	}
	fileIV, err := hex.DecodeString(record.IVEncrypted)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	ciphertext, err := uc.Store.Fetch(ctx, record.CID)
	if err != nil {
		return "", err
	}
	plaintext, err := uc.Envelope.Decrypt(ciphertext, fileKey, fileIV)
	if err != nil {
		return "", err
	}
	return intake.HashHex(plaintext), nil
}

func (uc *SyncEvidence) quarantine(ctx context.Context, record domain.EvidenceRecord) {
	if record.Status == domain.EvidenceStatusQuarantined {
		return
	}
	if err := uc.Evidence.UpdateStatus(ctx, record.CaseID, record.EvidenceID, domain.EvidenceStatusQuarantined); err != nil {
		return
	}
	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    record.CaseID,
		EventType: domain.AuditEventIntegrityViolation,
		Payload: map[string]any{
			"evidence_id": record.EvidenceID,
			"cid":         record.CID,
			"source":      "sync",
		},
		ActorType:  domain.AuditActorService,
		TargetType: domain.AuditTargetEvidence,
		TargetID:   record.EvidenceID,
		Result:     domain.AuditResultFailure,
		ErrorCode:  "INTEGRITY_MISMATCH",
	}, domain.Principal{})
}
