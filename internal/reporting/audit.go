package reporting

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

type AuditShare struct {
	MemberID uuid.UUID       `json:"member_id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

// AuditEntry explains how one expense was split.
type AuditEntry struct {
	ExpenseID    uuid.UUID             `json:"expense_id"`
	Date         time.Time             `json:"date"`
	Description  string                `json:"description"`
	Category     enums.ExpenseCategory `json:"category"`
	PayerID      uuid.UUID             `json:"payer_id"`
	PayerName    string                `json:"payer_name"`
	Amount       decimal.Decimal       `json:"amount"`
	Contributors string                `json:"contributors"`
	Shares       []AuditShare          `json:"shares"`
}

// AuditTrail lists every expense with its computed shares, oldest first. An expense without
// contributors is reported with no shares instead of failing the whole trail.
func AuditTrail(ledger settlement.Ledger, allocator settlement.Allocator) ([]AuditEntry, error) {
	allocator.AllowEmpty = true

	entries := make([]AuditEntry, 0, len(ledger.Expenses))
	for _, expense := range ledger.Expenses {
		shares, err := allocator.Allocate(expense)
		if err != nil {
			return nil, err
		}

		entry := AuditEntry{
			ExpenseID:   expense.ID,
			Date:        expense.Date,
			Description: expense.Description,
			Category:    expense.Category.OrOther(),
			PayerID:     expense.PayerID,
			PayerName:   memberName(ledger, expense.PayerID),
			Amount:      expense.Amount,
			Shares:      make([]AuditShare, 0, len(shares)),
		}
		for id, amount := range shares {
			entry.Shares = append(entry.Shares, AuditShare{MemberID: id, Name: memberName(ledger, id), Amount: amount})
		}
		sort.Slice(entry.Shares, func(i, j int) bool {
			if entry.Shares[i].Name != entry.Shares[j].Name {
				return entry.Shares[i].Name < entry.Shares[j].Name
			}
			return bytes.Compare(entry.Shares[i].MemberID[:], entry.Shares[j].MemberID[:]) < 0
		})

		firstNames := make([]string, 0, len(entry.Shares))
		for _, share := range entry.Shares {
			firstNames = append(firstNames, firstName(share.Name))
		}
		entry.Contributors = strings.Join(firstNames, ", ")
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return bytes.Compare(entries[i].ExpenseID[:], entries[j].ExpenseID[:]) < 0
	})
	return entries, nil
}

func memberName(ledger settlement.Ledger, id uuid.UUID) string {
	if member, ok := ledger.Member(id); ok {
		return member.Name
	}
	return ""
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
