package usecase

import (
	"context"
	"encoding/hex"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/intake"
)

type RetrieveEvidenceRequest struct {
	CaseID     string
	EvidenceID string
	Principal  domain.Principal
}

type RetrieveEvidenceResponse struct {
	Plaintext []byte
	Filename  string
}

// RetrieveEvidence serves decrypted evidence only after the plaintext hash
// matches the one recorded at submission. A mismatch quarantines the record
// and is reported as an integrity failure, never as content.
type RetrieveEvidence struct {
	Evidence domain.EvidenceRepository
	Store    domain.ObjectStore
	Envelope EnvelopeEngine
	Names    FilenameResolver
	Audit    *AuditEmitter
}

func (uc *RetrieveEvidence) Execute(ctx context.Context, req RetrieveEvidenceRequest) (*RetrieveEvidenceResponse, error) {
	if req.CaseID == "" || req.EvidenceID == "" {
		return nil, domain.ErrMissingUpload
	}
	record, err := uc.Evidence.Get(ctx, req.CaseID, req.EvidenceID)
	if err != nil {
		return nil, err
	}
	if record.Status == domain.EvidenceStatusQuarantined {
		return nil, domain.ErrIntegrityMismatch
	}

	wrapIV, err := hex.DecodeString(record.KeyIVEncrypted)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	fileKey, err := uc.Envelope.UnwrapKey(record.KeyEncrypted, wrapIV)
	if err != nil {
		return nil, err
	}
	fileIV, err := hex.DecodeString(record.IVEncrypted)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}

	ciphertext, err := uc.Store.Fetch(ctx, record.CID)
	if err != nil {
		return nil, err
	}
	plaintext, err := uc.Envelope.Decrypt(ciphertext, fileKey, fileIV)
	if err != nil {
		return nil, err
	}

	if intake.HashHex(plaintext) != record.HashOriginal {
		return nil, uc.quarantine(ctx, req, record)
	}

	pinnedName := ""
	if uc.Names != nil {
		pinnedName = uc.Names.PinnedFilename(ctx, record.CID)
	}
	if pinnedName == "" {
		pinnedName = record.OriginalFilename
	}

	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    req.CaseID,
		EventType: domain.AuditEventEvidenceRetrieved,
		Payload: map[string]any{
			"evidence_id": req.EvidenceID,
			"cid":         record.CID,
		},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   req.EvidenceID,
		Result:     domain.AuditResultSuccess,
	}, req.Principal)

	return &RetrieveEvidenceResponse{
		Plaintext: plaintext,
		Filename:  intake.DownloadFilename(pinnedName, req.EvidenceID),
	}, nil
}

func (uc *RetrieveEvidence) quarantine(ctx context.Context, req RetrieveEvidenceRequest, record *domain.EvidenceRecord) error {
	if err := uc.Evidence.UpdateStatus(ctx, req.CaseID, req.EvidenceID, domain.EvidenceStatusQuarantined); err != nil {
		return err
	}
	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    req.CaseID,
		EventType: domain.AuditEventIntegrityViolation,
		Payload: map[string]any{
			"evidence_id":   req.EvidenceID,
			"cid":           record.CID,
			"hash_original": record.HashOriginal,
		},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   req.EvidenceID,
		Result:     domain.AuditResultFailure,
		ErrorCode:  "INTEGRITY_MISMATCH",
	}, req.Principal)
	return domain.ErrIntegrityMismatch
}
