// Package reporting groups ledger expenses into the breakdowns shown on dashboards.
//
// Every function is pure and independent of the order of its input.
package reporting

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

type CategoryRow struct {
	Category enums.ExpenseCategory `json:"category"`
	Total    decimal.Decimal       `json:"total"`
	Percent  float64               `json:"percent"`
	Count    int                   `json:"count"`
}

type CategoryReport struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Rows  []CategoryRow   `json:"rows"`
}

// Row returns the row for category, if any expense fell into it.
func (r CategoryReport) Row(category enums.ExpenseCategory) (CategoryRow, bool) {
	category = category.OrOther()
	for _, row := range r.Rows {
		if row.Category == category {
			return row, true
		}
	}
	return CategoryRow{}, false
}

// ByCategory sums expenses per category. Uncategorized expenses are reported as "other".
// Rows are ordered by total descending, then by category name.
func ByCategory(expenses []settlement.Expense) CategoryReport {
	totals := make(map[enums.ExpenseCategory]*CategoryRow)
	report := CategoryReport{Total: decimal.Zero, Rows: []CategoryRow{}}

	for _, expense := range expenses {
		category := expense.Category.OrOther()
		row, ok := totals[category]
		if !ok {
			row = &CategoryRow{Category: category, Total: decimal.Zero}
			totals[category] = row
		}
		row.Total = row.Total.Add(expense.Amount)
		row.Count++
		report.Total = report.Total.Add(expense.Amount)
		report.Count++
	}

	for _, row := range totals {
		row.Percent = money.Percent(row.Total, report.Total)
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if c := report.Rows[i].Total.Cmp(report.Rows[j].Total); c != 0 {
			return c > 0
		}
		return report.Rows[i].Category < report.Rows[j].Category
	})
	return report
}

// ForMember is the category breakdown of the expenses memberID paid.
func ForMember(expenses []settlement.Expense, memberID uuid.UUID) CategoryReport {
	paid := make([]settlement.Expense, 0, len(expenses))
	for _, expense := range expenses {
		if expense.PayerID == memberID {
			paid = append(paid, expense)
		}
	}
	return ByCategory(paid)
}
