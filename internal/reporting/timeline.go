package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

// Granularity is the width of a TimeReport bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// IsValid reports whether g is a supported bucket width.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityMonth, GranularityYear:
		return true
	default:
		return false
	}
}

// ParseGranularity accepts day, month or year. An empty value means month.
func ParseGranularity(value string) (Granularity, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return GranularityMonth, nil
	}
	g := Granularity(value)
	if !g.IsValid() {
		return "", fmt.Errorf("invalid granularity %q", value)
	}
	return g, nil
}

// TimeRow is one bucket. Month and Day are zero when the granularity does not use them.
type TimeRow struct {
	Period  string          `json:"period"`
	Year    int             `json:"year"`
	Month   int             `json:"month,omitempty"`
	Day     int             `json:"day,omitempty"`
	Total   decimal.Decimal `json:"total"`
	Percent float64         `json:"percent"`
	Count   int             `json:"count"`
}

type TimeReport struct {
	Granularity Granularity     `json:"granularity"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	Rows        []TimeRow       `json:"rows"`
}

func ByDay(expenses []settlement.Expense) TimeReport {
	return ByPeriod(expenses, GranularityDay)
}

func ByMonth(expenses []settlement.Expense) TimeReport {
	return ByPeriod(expenses, GranularityMonth)
}

func ByYear(expenses []settlement.Expense) TimeReport {
	return ByPeriod(expenses, GranularityYear)
}

// ByPeriod buckets expenses by their date. Rows are in chronological order.
func ByPeriod(expenses []settlement.Expense, granularity Granularity) TimeReport {
	if !granularity.IsValid() {
		granularity = GranularityMonth
	}
	buckets := make(map[string]*TimeRow)
	report := TimeReport{Granularity: granularity, Total: decimal.Zero, Rows: []TimeRow{}}

	for _, expense := range expenses {
		row := bucketFor(expense.Date, granularity)
		existing, ok := buckets[row.Period]
		if !ok {
			existing = &row
			buckets[row.Period] = existing
		}
		existing.Total = existing.Total.Add(expense.Amount)
		existing.Count++
		report.Total = report.Total.Add(expense.Amount)
		report.Count++
	}

	for _, row := range buckets {
		row.Percent = money.Percent(row.Total, report.Total)
		report.Rows = append(report.Rows, *row)
	}
	// zero-padded periods sort chronologically as strings
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Period < report.Rows[j].Period
	})
	return report
}

func bucketFor(date time.Time, granularity Granularity) TimeRow {
	year, month, day := date.Date()
	row := TimeRow{Year: year, Total: decimal.Zero}
	switch granularity {
	case GranularityYear:
		row.Period = fmt.Sprintf("%04d", year)
	case GranularityDay:
		row.Month = int(month)
		row.Day = day
		row.Period = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	default:
		row.Month = int(month)
		row.Period = fmt.Sprintf("%04d-%02d", year, month)
	}
	return row
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// EventsByYear counts events per start year, oldest first.
func EventsByYear(starts []time.Time) []YearCount {
	counts := make(map[int]int)
	for _, start := range starts {
		counts[start.Year()]++
	}
	out := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
