package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"provelope/internal/domain"
)

type ReceiptRepository interface {
	Insert(ctx context.Context, receipt domain.VerificationReceipt) error
	ListByContentID(ctx context.Context, contentID string, limit int) ([]domain.VerificationReceipt, error)
}

// RecordVerification persists the outcome of daemon verifications for audit.
type RecordVerification struct {
	Receipts ReceiptRepository
	Clock    func() time.Time
}

func NewRecordVerification(receipts ReceiptRepository) *RecordVerification {
	return &RecordVerification{Receipts: receipts, Clock: time.Now}
}

func (r *RecordVerification) Record(ctx context.Context, proofKind domain.ProofKind, v domain.Verification) (domain.VerificationReceipt, error) {
	id, err := newReceiptID()
	if err != nil {
		return domain.VerificationReceipt{}, err
	}
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	receipt := domain.VerificationReceipt{
		ID:            id,
		ContentID:     v.ContentID,
		KeyID:         v.KeyID,
		OK:            v.OK,
		FailureReason: string(v.FailureReason),
		ProofKind:     string(proofKind),
		VerifiedAt:    clock().UTC(),
	}
	if err := r.Receipts.Insert(ctx, receipt); err != nil {
		return domain.VerificationReceipt{}, err
	}
	return receipt, nil
}

func (r *RecordVerification) History(ctx context.Context, contentID string, limit int) ([]domain.VerificationReceipt, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.Receipts.ListByContentID(ctx, contentID, limit)
}

func newReceiptID() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	raw[6] = (raw[6] & 0x0f) | 0x40
	raw[8] = (raw[8] & 0x3f) | 0x80
	s := hex.EncodeToString(raw)
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32], nil
}
