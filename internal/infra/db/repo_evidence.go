package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

func (r *EvidenceRepository) Create(ctx context.Context, record domain.EvidenceRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	id, err := newUUID()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	model := evidenceModelFromDomain(id, record)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEvidence
		}
		return err
	}
	return nil
}

func (r *EvidenceRepository) Get(ctx context.Context, caseID, evidenceID string) (*domain.EvidenceRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model EvidenceModel
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND evidence_id = ?", caseID, evidenceID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	record := evidenceRecordFromModel(model)
	return &record, nil
}

func (r *EvidenceRepository) List(ctx context.Context) ([]domain.EvidenceRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []EvidenceModel
	if err := r.db.WithContext(ctx).
		Order("case_id ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.EvidenceRecord, 0, len(models))
	for _, model := range models {
		out = append(out, evidenceRecordFromModel(model))
	}
	return out, nil
}

func (r *EvidenceRepository) UpdateStatus(ctx context.Context, caseID, evidenceID string, status domain.EvidenceStatus) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&EvidenceModel{}).
		Where("case_id = ? AND evidence_id = ?", caseID, evidenceID).
		Updates(map[string]any{
			"status":     string(status),
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

func evidenceModelFromDomain(id string, record domain.EvidenceRecord) EvidenceModel {
	return EvidenceModel{
		ID:               id,
		CaseID:           record.CaseID,
		EvidenceID:       record.EvidenceID,
		CID:              record.CID,
		HashOriginal:     record.HashOriginal,
		OriginalFilename: record.OriginalFilename,
		KeyEncrypted:     record.KeyEncrypted,
		IVEncrypted:      record.IVEncrypted,
		KeyIVEncrypted:   record.KeyIVEncrypted,
		Description:      record.Description,
		EvidenceType:     string(record.EvidenceType),
		Status:           string(record.Status),
		SubmittedBy:      record.SubmittedBy,
		CreatedAt:        record.CreatedAt.UTC(),
		UpdatedAt:        record.UpdatedAt.UTC(),
	}
}

func evidenceRecordFromModel(model EvidenceModel) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		CaseID:           model.CaseID,
		EvidenceID:       model.EvidenceID,
		CID:              model.CID,
		HashOriginal:     model.HashOriginal,
		OriginalFilename: model.OriginalFilename,
		KeyEncrypted:     model.KeyEncrypted,
		IVEncrypted:      model.IVEncrypted,
		KeyIVEncrypted:   model.KeyIVEncrypted,
		Description:      model.Description,
		EvidenceType:     domain.EvidenceType(model.EvidenceType),
		Status:           domain.EvidenceStatus(model.Status),
		SubmittedBy:      model.SubmittedBy,
		CreatedAt:        model.CreatedAt.UTC(),
		UpdatedAt:        model.UpdatedAt.UTC(),
	}
}

var _ domain.EvidenceRepository = (*EvidenceRepository)(nil)
