package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/bundles"
)

// ExportCaseBundle assembles the court-facing custody bundle for one case:
// every evidence record with its on-chain anchor, unresolved pipeline
// markers, and the audit chain verified end to end. Anchor lookups are
// all-or-nothing; a partial bundle is worse than no bundle.
type ExportCaseBundle struct {
	Evidence domain.EvidenceRepository
	Pins     domain.PendingPinRepository
	Ledger   domain.Ledger
	Sink     AuditSink
	Audit    *AuditEmitter
	Now      func() time.Time
}

func (uc *ExportCaseBundle) Execute(ctx context.Context, caseID string, principal domain.Principal) (*bundles.CaseBundle, error) {
	if caseID == "" {
		return nil, domain.ErrMissingUpload
	}
	all, err := uc.Evidence.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]domain.EvidenceRecord, 0, len(all))
	for _, record := range all {
		if record.CaseID == caseID {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}

	anchors := make(map[string]*domain.LedgerAnchor, len(records))
	for _, record := range records {
		anchor, err := uc.Ledger.GetEvidenceByID(ctx, caseID, record.EvidenceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		anchors[record.EvidenceID] = anchor
	}

	unresolved, err := uc.Pins.ListUnresolved(ctx)
	if err != nil {
		return nil, err
	}
	pins := make([]domain.PendingPin, 0, len(unresolved))
	for _, pin := range unresolved {
		if pin.CaseID == caseID {
			pins = append(pins, pin)
		}
	}

	events, err := uc.Sink.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	chainErr := VerifyCaseAuditChain(ctx, uc.Sink, caseID)

	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	bundle, err := bundles.Build(bundles.BundleInput{
		CaseID:        caseID,
		GeneratedAt:   now(),
		Records:       records,
		Anchors:       anchors,
		PendingPins:   pins,
		AuditEvents:   events,
		AuditChainErr: chainErr,
	})
	if err != nil {
		return nil, err
	}

	uc.Audit.Emit(ctx, domain.AuditEvent{
		CaseID:    caseID,
		EventType: domain.AuditEventCaseExported,
		Payload: map[string]any{
			"bundle_digest":  bundle.Digest,
			"evidence_count": len(bundle.Evidence),
			"chain_verified": bundle.AuditChain.Verified,
		},
		TargetType: domain.AuditTargetCase,
		TargetID:   caseID,
		Result:     domain.AuditResultSuccess,
	}, principal)

	return bundle, nil
}
