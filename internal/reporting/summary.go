package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

// Summary is the headline view of an event.
type Summary struct {
	Total          decimal.Decimal `json:"total"`
	MemberCount    int             `json:"member_count"`
	ExpenseCount   int             `json:"expense_count"`
	SettledCount   int             `json:"settled_count"`
	PendingCount   int             `json:"pending_count"`
	AllApproved    bool            `json:"all_approved"`
	DurationDays   int             `json:"duration_days"`
	AveragePerDay  decimal.Decimal `json:"average_per_day"`
	FairShare      decimal.Decimal `json:"fair_share"`
	TopCategory    string          `json:"top_category,omitempty"`
	FirstExpenseAt *time.Time      `json:"first_expense_at,omitempty"`
	LastExpenseAt  *time.Time      `json:"last_expense_at,omitempty"`
}

// Summarize builds the event headline. start and end are the event's inclusive date range; a zero
// start or an end before start yields a zero duration. An event without expenses is not all approved.
func Summarize(ledger settlement.Ledger, start, end time.Time) Summary {
	summary := Summary{
		Total:         decimal.Zero,
		MemberCount:   len(ledger.Members),
		ExpenseCount:  len(ledger.Expenses),
		AllApproved:   len(ledger.Expenses) > 0,
		DurationDays:  durationDays(start, end),
		AveragePerDay: decimal.Zero,
		FairShare:     decimal.Zero,
	}

	for _, expense := range ledger.Expenses {
		summary.Total = summary.Total.Add(expense.Amount)
		if expense.Settled {
			summary.SettledCount++
		}
		switch expense.ApprovalStatus {
		case enums.ApprovalStatusApproved:
		case enums.ApprovalStatusPending, "":
			summary.PendingCount++
			summary.AllApproved = false
		default:
			summary.AllApproved = false
		}

		date := expense.Date
		if summary.FirstExpenseAt == nil || date.Before(*summary.FirstExpenseAt) {
			summary.FirstExpenseAt = &date
		}
		if summary.LastExpenseAt == nil || date.After(*summary.LastExpenseAt) {
			summary.LastExpenseAt = &date
		}
	}

	if summary.DurationDays > 0 {
		summary.AveragePerDay = summary.Total.DivRound(decimal.NewFromInt(int64(summary.DurationDays)), money.Places)
	}
	if summary.MemberCount > 0 {
		summary.FairShare = summary.Total.DivRound(decimal.NewFromInt(int64(summary.MemberCount)), money.Places)
	}
	if categories := ByCategory(ledger.Expenses); len(categories.Rows) > 0 {
		summary.TopCategory = categories.Rows[0].Category.String()
	}
	return summary
}

func durationDays(start, end time.Time) int {
	if start.IsZero() || end.Before(start) {
		return 0
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	from := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}
