package db

import (
	"context"
	"errors"

	"provelope/internal/domain"

	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("db unavailable")

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Insert(ctx context.Context, receipt domain.VerificationReceipt) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ReceiptModel{
		ID:            receipt.ID,
		ContentID:     receipt.ContentID,
		KID:           receipt.KeyID,
		OK:            receipt.OK,
		FailureReason: receipt.FailureReason,
		ProofKind:     receipt.ProofKind,
		VerifiedAt:    receipt.VerifiedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ReceiptRepository) ListByContentID(ctx context.Context, contentID string, limit int) ([]domain.VerificationReceipt, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ReceiptModel
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("verified_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.VerificationReceipt, 0, len(models))
	for _, model := range models {
		out = append(out, domain.VerificationReceipt{
			ID:            model.ID,
			ContentID:     model.ContentID,
			KeyID:         model.KID,
			OK:            model.OK,
			FailureReason: model.FailureReason,
			ProofKind:     model.ProofKind,
			VerifiedAt:    model.VerifiedAt,
		})
	}
	return out, nil
}
