package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a recorded payer to payee transfer. Transactions are history only and never feed
// back into balance computation.
type Transaction struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	EventID   uuid.UUID       `gorm:"column:event_id;type:uuid;not null;index"`
	PayerID   uuid.UUID       `gorm:"column:payer_id;type:uuid;not null"`
	PayeeID   uuid.UUID       `gorm:"column:payee_id;type:uuid;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	ExpenseID *uuid.UUID      `gorm:"column:expense_id;type:uuid"`
	Note      string          `gorm:"column:note"`
	SettledAt time.Time       `gorm:"column:settled_at;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
