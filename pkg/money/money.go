// Package money holds the fixed-point helpers shared by the ledger engine and the HTTP layer.
//
// Amounts are shopspring decimals with at most two fractional digits. Arithmetic that must split
// an amount happens in integer cents so that no fraction of a cent is ever created or lost.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every amount carries.
const Places = 2

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.New("amount has more than two fractional digits")
	ErrTooLarge       = errors.New("amount exceeds 9999999999.99")
)

var (
	// OneCent is the smallest representable amount.
	OneCent = decimal.New(1, -Places)
	// MaxAmount matches the NUMERIC(12,2) amount columns.
	MaxAmount = decimal.New(999999999999, -Places)
)

// Parse converts user input such as "12.34" or "12,34" into a decimal amount.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := Validate(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Validate reports whether amount is a non-negative value with at most two fractional digits
// that fits in MaxAmount.
func Validate(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrTooLarge
	}
	if !amount.Equal(amount.Truncate(Places)) {
		return ErrTooPrecise
	}
	return nil
}

// ToCents returns the amount expressed in minor units. Callers run Validate first so the
// result always fits in an int64.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(Places).IntPart()
}

// FromCents builds an amount from minor units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Percent returns part/whole*100 rounded to two places, or 0 when whole is zero.
func Percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Mul(decimal.NewFromInt(100)).DivRound(whole, Places).InexactFloat64()
}

// Sum adds the provided amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}
