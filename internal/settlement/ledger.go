package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

// Member is a participant of one event.
type Member struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
}

// Expense is a dated cost covered by one payer on behalf of a set of contributors.
// Amount is the total, not a per-person value. The payer is not required to be a contributor.
type Expense struct {
	ID             uuid.UUID             `json:"id"`
	EventID        uuid.UUID             `json:"event_id"`
	Description    string                `json:"description"`
	Date           time.Time             `json:"date"`
	Amount         decimal.Decimal       `json:"amount"`
	PayerID        uuid.UUID             `json:"payer_id"`
	ContributorIDs []uuid.UUID           `json:"contributor_ids"`
	Category       enums.ExpenseCategory `json:"category,omitempty"`
	PaymentMethod  enums.PaymentMethod   `json:"payment_method,omitempty"`
	Currency       enums.Currency        `json:"currency,omitempty"`
	Location       string                `json:"location,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	ApprovalStatus enums.ApprovalStatus  `json:"approval_status,omitempty"`
	DocumentRef    string                `json:"document_ref,omitempty"`
	Settled        bool                  `json:"settled"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// HasContributor reports whether memberID shares this expense.
func (e Expense) HasContributor(memberID uuid.UUID) bool {
	for _, id := range e.ContributorIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// Ledger is the read-only snapshot of one event used for a single computation.
type Ledger struct {
	EventID  uuid.UUID `json:"event_id"`
	Members  []Member  `json:"members"`
	Expenses []Expense `json:"expenses"`
}

// Member returns the member with the given id.
func (l Ledger) Member(id uuid.UUID) (Member, bool) {
	for _, member := range l.Members {
		if member.ID == id {
			return member, true
		}
	}
	return Member{}, false
}

// Filter returns a snapshot holding only the expenses keep accepts. Members are shared.
func (l Ledger) Filter(keep func(Expense) bool) Ledger {
	out := Ledger{EventID: l.EventID, Members: l.Members}
	for _, expense := range l.Expenses {
		if keep(expense) {
			out.Expenses = append(out.Expenses, expense)
		}
	}
	return out
}

// ApprovedOnly keeps expenses whose approval status is approved.
func ApprovedOnly(e Expense) bool {
	return e.ApprovalStatus == enums.ApprovalStatusApproved
}

// Transaction is a single payer→payee transfer. It is ledger output and never feeds balances.
type Transaction struct {
	PayerID   uuid.UUID       `json:"payer_id"`
	PayerName string          `json:"payer_name,omitempty"`
	PayeeID   uuid.UUID       `json:"payee_id"`
	PayeeName string          `json:"payee_name,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	ExpenseID *uuid.UUID      `json:"expense_id,omitempty"`
}
