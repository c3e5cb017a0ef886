package reporting

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
)

// EventSpan is the part of an event the owner analytics look at.
type EventSpan struct {
	ID    uuid.UUID
	Start time.Time
	End   time.Time
}

// YearActivity groups the events that start in one year.
type YearActivity struct {
	Year         int             `json:"year"`
	EventCount   int             `json:"event_count"`
	ExpenseCount int             `json:"expense_count"`
	Total        decimal.Decimal `json:"total"`
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// OwnerAnalytics spans every event of one owner.
type OwnerAnalytics struct {
	EventCount   int             `json:"event_count"`
	ExpenseCount int             `json:"expense_count"`
	Total        decimal.Decimal `json:"total"`
	Years        []YearActivity  `json:"years"`
	Categories   CategoryReport  `json:"categories"`
	// ExpensesByDay only counts expenses dated inside their event's range.
	ExpensesByDay TimeReport    `json:"expenses_by_day"`
	EventStarts   []PeriodCount `json:"event_starts"`
}

// Analyze builds the owner analytics. Expenses of events missing from events are ignored.
func Analyze(events []EventSpan, expenses []settlement.Expense) OwnerAnalytics {
	spans := make(map[uuid.UUID]EventSpan, len(events))
	years := make(map[int]*YearActivity)
	starts := make(map[string]int)
	for _, event := range events {
		spans[event.ID] = event
		year := event.Start.Year()
		activity, ok := years[year]
		if !ok {
			activity = &YearActivity{Year: year, Total: decimal.Zero}
			years[year] = activity
		}
		activity.EventCount++
		starts[bucketFor(event.Start, GranularityDay).Period]++
	}

	out := OwnerAnalytics{EventCount: len(events), Total: decimal.Zero}
	owned := make([]settlement.Expense, 0, len(expenses))
	inRange := make([]settlement.Expense, 0, len(expenses))
	for _, expense := range expenses {
		span, ok := spans[expense.EventID]
		if !ok {
			continue
		}
		owned = append(owned, expense)
		out.Total = out.Total.Add(expense.Amount)

		activity := years[span.Start.Year()]
		activity.ExpenseCount++
		activity.Total = activity.Total.Add(expense.Amount)

		if !expense.Date.Before(span.Start) && !expense.Date.After(span.End) {
			inRange = append(inRange, expense)
		}
	}
	out.ExpenseCount = len(owned)
	out.Categories = ByCategory(owned)
	out.ExpensesByDay = ByDay(inRange)

	out.Years = make([]YearActivity, 0, len(years))
	for _, activity := range years {
		out.Years = append(out.Years, *activity)
	}
	sort.Slice(out.Years, func(i, j int) bool { return out.Years[i].Year < out.Years[j].Year })

	out.EventStarts = make([]PeriodCount, 0, len(starts))
	for period, count := range starts {
		out.EventStarts = append(out.EventStarts, PeriodCount{Period: period, Count: count})
	}
	sort.Slice(out.EventStarts, func(i, j int) bool { return out.EventStarts[i].Period < out.EventStarts[j].Period })
	return out
}
