package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

// Expense is a cost paid by one member on behalf of its contributors.
type Expense struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	EventID        uuid.UUID             `gorm:"column:event_id;type:uuid;not null;index"`
	Description    string                `gorm:"column:description;not null"`
	Date           time.Time             `gorm:"column:expense_date;type:date;not null"`
	Amount         decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	PayerID        uuid.UUID             `gorm:"column:payer_id;type:uuid;not null;index"`
	Category       enums.ExpenseCategory `gorm:"column:category"`
	PaymentMethod  enums.PaymentMethod   `gorm:"column:payment_method"`
	Currency       enums.Currency        `gorm:"column:currency;not null;default:'INR'"`
	Location       string                `gorm:"column:location"`
	Notes          string                `gorm:"column:notes"`
	ApprovalStatus enums.ApprovalStatus  `gorm:"column:approval_status;not null;default:'pending'"`
	DocumentRef    string                `gorm:"column:document_ref"`
	Settled        bool                  `gorm:"column:settled;not null;default:false"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Contributors []ExpenseContributor `gorm:"foreignKey:ExpenseID;references:ID"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ContributorIDs lists the members sharing the expense.
func (e Expense) ContributorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Contributors))
	for _, c := range e.Contributors {
		ids = append(ids, c.MemberID)
	}
	return ids
}

// ExpenseContributor links an expense to one member who shares it.
type ExpenseContributor struct {
	ExpenseID uuid.UUID `gorm:"column:expense_id;type:uuid;primaryKey"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;primaryKey;index"`
}
