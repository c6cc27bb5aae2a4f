package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

type PendingPinRepository struct {
	db *gorm.DB
}

func NewPendingPinRepository(db *gorm.DB) *PendingPinRepository {
	return &PendingPinRepository{db: db}
}

// Put upserts the marker for one upload, advancing its stage. The marker is
// written before each side effect that follows pinning, so a crash leaves a
// trail the reconciliation pass can pick up.
func (r *PendingPinRepository) Put(ctx context.Context, pin domain.PendingPin) error {
	if r.db == nil {
		return errDBUnavailable
	}
	id, err := newUUID()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	model := PendingPinModel{
		ID:         id,
		CaseID:     pin.CaseID,
		EvidenceID: pin.EvidenceID,
		CID:        pin.CID,
		Stage:      string(pin.Stage),
		TxHash:     pin.TxHash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "case_id"}, {Name: "evidence_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"cid":        pin.CID,
			"stage":      string(pin.Stage),
			"tx_hash":    pin.TxHash,
			"resolved":   false,
			"updated_at": now,
		}),
	}).Create(&model).Error
}

func (r *PendingPinRepository) Resolve(ctx context.Context, caseID, evidenceID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&PendingPinModel{}).
		Where("case_id = ? AND evidence_id = ? AND resolved = false", caseID, evidenceID).
		Updates(map[string]any{
			"resolved":   true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PendingPinRepository) ListUnresolved(ctx context.Context) ([]domain.PendingPin, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []PendingPinModel
	if err := r.db.WithContext(ctx).
		Where("resolved = false").
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.PendingPin, 0, len(models))
	for _, model := range models {
		out = append(out, domain.PendingPin{
			CaseID:     model.CaseID,
			EvidenceID: model.EvidenceID,
			CID:        model.CID,
			Stage:      domain.PendingPinStage(model.Stage),
			TxHash:     model.TxHash,
			CreatedAt:  model.CreatedAt.UTC(),
			UpdatedAt:  model.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

var _ domain.PendingPinRepository = (*PendingPinRepository)(nil)
