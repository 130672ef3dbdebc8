package db

import "time"

type ReceiptModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	ContentID     string    `gorm:"index;not null"`
	KID           string    `gorm:"index"`
	OK            bool      `gorm:"not null"`
	FailureReason string
	ProofKind     string    `gorm:"not null"`
	VerifiedAt    time.Time `gorm:"index;not null"`
}

func (ReceiptModel) TableName() string { return "verification_receipts" }
