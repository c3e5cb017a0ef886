package ledgers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/db/models"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// CreateEventInput captures the fields of an event for create and update.
type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	Currency    enums.Currency
}

// ExpenseInput is the full state of an expense for create and update.
type ExpenseInput struct {
	Description    string
	Date           time.Time
	Amount         decimal.Decimal
	PayerID        uuid.UUID
	ContributorIDs []uuid.UUID
	Category       enums.ExpenseCategory
	PaymentMethod  enums.PaymentMethod
	Currency       enums.Currency
	Location       string
	Notes          string
	ApprovalStatus enums.ApprovalStatus
	DocumentRef    string
	Settled        bool
}

// TransactionInput records a manual transfer between two members.
type TransactionInput struct {
	PayerID   uuid.UUID
	PayeeID   uuid.UUID
	Amount    decimal.Decimal
	ExpenseID *uuid.UUID
	Note      string
	SettledAt time.Time
}

// ViewOptions narrows the snapshot a computation runs over.
type ViewOptions struct {
	ApprovedOnly bool
}

type EventDTO struct {
	ID          uuid.UUID      `json:"id"`
	OwnerID     uuid.UUID      `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Currency    enums.Currency `json:"currency"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type MemberDTO struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
}

type TransactionDTO struct {
	ID        uuid.UUID       `json:"id"`
	EventID   uuid.UUID       `json:"event_id"`
	PayerID   uuid.UUID       `json:"payer_id"`
	PayerName string          `json:"payer_name,omitempty"`
	PayeeID   uuid.UUID       `json:"payee_id"`
	PayeeName string          `json:"payee_name,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	ExpenseID *uuid.UUID      `json:"expense_id,omitempty"`
	Note      string          `json:"note,omitempty"`
	SettledAt time.Time       `json:"settled_at"`
}

func toEventDTO(event models.Event) EventDTO {
	return EventDTO{
		ID:          event.ID,
		OwnerID:     event.OwnerID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartDate:   event.StartDate.Format(dateLayout),
		EndDate:     event.EndDate.Format(dateLayout),
		Currency:    event.Currency,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func toMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{ID: member.ID, EventID: member.EventID, Name: member.Name}
}

func toLedgerMember(member models.Member) settlement.Member {
	return settlement.Member{ID: member.ID, EventID: member.EventID, Name: member.Name}
}

func toLedgerExpense(expense models.Expense) settlement.Expense {
	return settlement.Expense{
		ID:             expense.ID,
		EventID:        expense.EventID,
		Description:    expense.Description,
		Date:           expense.Date,
		Amount:         expense.Amount,
		PayerID:        expense.PayerID,
		ContributorIDs: expense.ContributorIDs(),
		Category:       expense.Category,
		PaymentMethod:  expense.PaymentMethod,
		Currency:       expense.Currency,
		Location:       expense.Location,
		Notes:          expense.Notes,
		ApprovalStatus: expense.ApprovalStatus,
		DocumentRef:    expense.DocumentRef,
		Settled:        expense.Settled,
		CreatedAt:      expense.CreatedAt,
		UpdatedAt:      expense.UpdatedAt,
	}
}

func toTransactionDTO(txn models.Transaction, names map[uuid.UUID]string) TransactionDTO {
	return TransactionDTO{
		ID:        txn.ID,
		EventID:   txn.EventID,
		PayerID:   txn.PayerID,
		PayerName: names[txn.PayerID],
		PayeeID:   txn.PayeeID,
		PayeeName: names[txn.PayeeID],
		Amount:    txn.Amount,
		ExpenseID: txn.ExpenseID,
		Note:      txn.Note,
		SettledAt: txn.SettledAt,
	}
}

func applyExpenseInput(expense *models.Expense, input ExpenseInput) {
	expense.Description = input.Description
	expense.Date = input.Date
	expense.Amount = input.Amount
	expense.PayerID = input.PayerID
	expense.Category = input.Category
	expense.PaymentMethod = input.PaymentMethod
	expense.Currency = input.Currency
	expense.Location = input.Location
	expense.Notes = input.Notes
	expense.ApprovalStatus = input.ApprovalStatus
	expense.DocumentRef = input.DocumentRef
	expense.Settled = input.Settled

	expense.Contributors = make([]models.ExpenseContributor, 0, len(input.ContributorIDs))
	for _, id := range input.ContributorIDs {
		expense.Contributors = append(expense.Contributors, models.ExpenseContributor{ExpenseID: expense.ID, MemberID: id})
	}
}
