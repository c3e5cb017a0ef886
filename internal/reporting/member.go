package reporting

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
)

var ErrMemberNotFound = errors.New("member not found")

// Counterpart is the selected member's standing with one other member.
type Counterpart struct {
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
	// PaidForThem is what the selected member covered for this member.
	PaidForThem decimal.Decimal `json:"paid_for_them"`
	// PaidForMe is what this member covered for the selected member.
	PaidForMe decimal.Decimal `json:"paid_for_me"`
	// Net is PaidForThem minus PaidForMe. Positive means this member owes the selected member.
	Net            decimal.Decimal `json:"net"`
	TheirPaid      decimal.Decimal `json:"their_paid"`
	TheirPercent   float64         `json:"their_paid_percent"`
	SharedExpenses int             `json:"shared_expenses"`
}

// MemberSummary is the report for one selected member of an event.
type MemberSummary struct {
	Member       settlement.MemberBalance `json:"member"`
	Total        decimal.Decimal          `json:"event_total"`
	Categories   CategoryReport           `json:"categories"`
	Counterparts []Counterpart            `json:"counterparts"`
}

// MemberReport describes memberID against every other member of the sheet. expenses must be the
// ledger the sheet was aggregated from; they provide the per-member expense counts.
func MemberReport(sheet *settlement.BalanceSheet, expenses []settlement.Expense, memberID uuid.UUID) (MemberSummary, error) {
	if sheet == nil {
		return MemberSummary{}, ErrMemberNotFound
	}
	selected, ok := sheet.Member(memberID)
	if !ok {
		return MemberSummary{}, ErrMemberNotFound
	}

	shared := make(map[uuid.UUID]int)
	for _, expense := range expenses {
		if expense.PayerID != memberID {
			continue
		}
		for _, id := range expense.ContributorIDs {
			if id != memberID {
				shared[id]++
			}
		}
	}

	report := MemberSummary{
		Member:       selected,
		Total:        sheet.Total,
		Categories:   ForMember(expenses, memberID),
		Counterparts: make([]Counterpart, 0, len(sheet.Members)),
	}
	for _, other := range sheet.Members {
		if other.MemberID == memberID {
			continue
		}
		report.Counterparts = append(report.Counterparts, Counterpart{
			MemberID:       other.MemberID,
			Name:           other.Name,
			PaidForThem:    sheet.PaidFor(memberID, other.MemberID),
			PaidForMe:      sheet.PaidFor(other.MemberID, memberID),
			Net:            sheet.Net(memberID, other.MemberID),
			TheirPaid:      other.Paid,
			TheirPercent:   other.PaidPercent,
			SharedExpenses: shared[other.MemberID],
		})
	}
	return report, nil
}
