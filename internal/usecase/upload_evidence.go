package usecase

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/envelope"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/intake"
)

type UploadEvidenceRequest struct {
	CaseID       string
	EvidenceID   string
	Filename     string
	MimeType     string
	EvidenceType string
	Description  string
	Content      []byte
	Principal    domain.Principal
}

type UploadEvidenceResponse struct {
	CID          string
	HashOriginal string
	TxHash       string
	Filename     string
}

// UploadEvidence drives one submission through validate, hash, encrypt, pin,
// record, anchor. Side effects run in that order: nothing external changes
// until validation passes, and a failure after pinning leaves at worst an
// orphaned pin plus a pending-pin marker for reconciliation.
type UploadEvidence struct {
	Evidence domain.EvidenceRepository
	Pins     domain.PendingPinRepository
	Store    domain.ObjectStore
	Ledger   domain.Ledger
	Envelope EnvelopeEngine
	Audit    *AuditEmitter
}

// Execute returns a non-nil response alongside the error once a CID exists,
// so callers can report which pinned object the failure stranded.
func (uc *UploadEvidence) Execute(ctx context.Context, req UploadEvidenceRequest) (*UploadEvidenceResponse, error) {
	if req.CaseID == "" || req.EvidenceID == "" || len(req.Content) == 0 {
		return nil, domain.ErrMissingUpload
	}
	evidenceType, ok := domain.ParseEvidenceType(req.EvidenceType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown evidence type %q", domain.ErrMissingUpload, req.EvidenceType)
	}
	typeCode, _ := evidenceType.Code()
	if err := intake.Validate(req.MimeType); err != nil {
		return nil, err
	}

	hashOriginal := intake.HashHex(req.Content)

	fileKey, err := uc.Envelope.NewFileKey()
	if err != nil {
		return nil, err
	}
	fileIV, err := uc.Envelope.NewIV()
	if err != nil {
		return nil, err
	}
	wrapIV, err := uc.Envelope.NewIV()
	if err != nil {
		return nil, err
	}
	ciphertext, err := uc.Envelope.Encrypt(req.Content, fileKey, fileIV)
	if err != nil {
		return nil, err
	}
	keyEncrypted, err := uc.Envelope.WrapKey(fileKey, wrapIV)
	if err != nil {
		return nil, err
	}

	sanitized := intake.SanitizeFilename(req.Filename)
	cid, err := uc.Store.Pin(ctx, ciphertext, req.EvidenceID+".bin", sanitized)
	if err != nil {
		return nil, err
	}
	resp := &UploadEvidenceResponse{
		CID:          cid,
		HashOriginal: hashOriginal,
		Filename:     sanitized,
	}

	if err := uc.Pins.Put(ctx, domain.PendingPin{
		CaseID:     req.CaseID,
		EvidenceID: req.EvidenceID,
		CID:        cid,
		Stage:      domain.PendingPinStagePinned,
	}); err != nil {
		return resp, fmt.Errorf("evidence pinned as %s but marker not written: %w", cid, err)
	}

	record := domain.EvidenceRecord{
		CaseID:           req.CaseID,
		EvidenceID:       req.EvidenceID,
		CID:              cid,
		HashOriginal:     hashOriginal,
		OriginalFilename: sanitized,
		KeyEncrypted:     keyEncrypted,
		IVEncrypted:      hex.EncodeToString(fileIV),
		KeyIVEncrypted:   hex.EncodeToString(wrapIV),
		Description:      req.Description,
		EvidenceType:     evidenceType,
		Status:           domain.EvidenceStatusSubmitted,
		SubmittedBy:      req.Principal.Subject,
	}
	if err := uc.Evidence.Create(ctx, record); err != nil {
		return resp, fmt.Errorf("evidence pinned as %s but not recorded: %w", cid, err)
	}

	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    req.CaseID,
		EventType: domain.AuditEventEvidenceSubmitted,
		Payload: map[string]any{
			"evidence_id":   req.EvidenceID,
			"cid":           cid,
			"hash_original": hashOriginal,
			"evidence_type": string(evidenceType),
		},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   req.EvidenceID,
		Result:     domain.AuditResultSuccess,
	}, req.Principal)

	if err := uc.Pins.Put(ctx, domain.PendingPin{
		CaseID:     req.CaseID,
		EvidenceID: req.EvidenceID,
		CID:        cid,
		Stage:      domain.PendingPinStageRecorded,
	}); err != nil {
		return resp, fmt.Errorf("evidence %s recorded but marker not advanced: %w", cid, err)
	}

	receipt, err := uc.Ledger.SubmitCaseEvidence(ctx, req.CaseID, req.EvidenceID, cid, hashOriginal, envelope.KeyHashHex(fileKey), typeCode)
	if receipt.TxHash != "" {
		// Keep the tx hash even when the submit errored out mid-wait; the
		// reconciliation pass can check whether the tx landed.
		_ = uc.Pins.Put(ctx, domain.PendingPin{
			CaseID:     req.CaseID,
			EvidenceID: req.EvidenceID,
			CID:        cid,
			Stage:      domain.PendingPinStageRecorded,
			TxHash:     receipt.TxHash,
		})
		resp.TxHash = receipt.TxHash
	}
	if err != nil {
		return resp, fmt.Errorf("evidence %s stored but not anchored: %w", cid, err)
	}

	if err := uc.Pins.Put(ctx, domain.PendingPin{
		CaseID:     req.CaseID,
		EvidenceID: req.EvidenceID,
		CID:        cid,
		Stage:      domain.PendingPinStageAnchored,
		TxHash:     receipt.TxHash,
	}); err != nil {
		return resp, fmt.Errorf("evidence %s anchored but marker not advanced: %w", cid, err)
	}
	if err := uc.Pins.Resolve(ctx, req.CaseID, req.EvidenceID); err != nil {
		return resp, fmt.Errorf("evidence %s anchored but marker not resolved: %w", cid, err)
	}

	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    req.CaseID,
		EventType: domain.AuditEventEvidenceAnchored,
		Payload: map[string]any{
			"evidence_id":  req.EvidenceID,
			"cid":          cid,
			"tx_hash":      receipt.TxHash,
			"block_number": receipt.BlockNumber,
		},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   req.EvidenceID,
		Result:     domain.AuditResultSuccess,
	}, req.Principal)

	return resp, nil
}
