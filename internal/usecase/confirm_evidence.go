package usecase

import (
	"context"
	"errors"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

type ConfirmEvidenceRequest struct {
	CaseID string
	// Index is the evidence position in the case's on-chain list.
	Index int64
	// EvidenceID, when known, lets the metadata record be marked confirmed in
	// the same call. Without it the sync pass catches the record up later.
	EvidenceID string
	Principal  domain.Principal
}

type ConfirmEvidenceResponse struct {
	TxHash      string
	BlockNumber uint64
}

// ConfirmEvidence flips the on-chain confirmed flag. The chain owns the
// ordering rule: confirming an unanchored or already-confirmed index comes
// back as a ChainRejectedError, which is passed through verbatim and never
// retried.
type ConfirmEvidence struct {
	Evidence domain.EvidenceRepository
	Ledger   domain.Ledger
	Audit    *AuditEmitter
}

func (uc *ConfirmEvidence) Execute(ctx context.Context, req ConfirmEvidenceRequest) (*ConfirmEvidenceResponse, error) {
	if req.CaseID == "" || req.Index < 0 {
		return nil, domain.ErrMissingUpload
	}

	receipt, err := uc.Ledger.ConfirmEvidence(ctx, req.CaseID, req.Index)
	if err != nil {
		var rejected *domain.ChainRejectedError
		if errors.As(err, &rejected) {
			uc.Audit.Emit(ctx, domain.AuditEvent{
				CaseID:    req.CaseID,
				EventType: domain.AuditEventEvidenceConfirmed,
				Payload: map[string]any{
					"index":  req.Index,
					"reason": rejected.Reason,
				},
				TargetType: domain.AuditTargetCase,
				TargetID:   req.CaseID,
				Result:     domain.AuditResultFailure,
				ErrorCode:  "CHAIN_REJECTED",
			}, req.Principal)
		}
		return nil, err
	}

	if req.EvidenceID != "" {
		if err := uc.Evidence.UpdateStatus(ctx, req.CaseID, req.EvidenceID, domain.EvidenceStatusConfirmed); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    req.CaseID,
		EventType: domain.AuditEventEvidenceConfirmed,
		Payload: map[string]any{
			"index":       req.Index,
			"evidence_id": req.EvidenceID,
			"tx_hash":     receipt.TxHash,
		},
		TargetType: domain.AuditTargetCase,
		TargetID:   req.CaseID,
		Result:     domain.AuditResultSuccess,
	}, req.Principal)

	return &ConfirmEvidenceResponse{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
	}, nil
}
