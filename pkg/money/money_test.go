package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "dot separator", input: "12.34", want: "12.34"},
		{name: "comma separator", input: "12,34", want: "12.34"},
		{name: "integer", input: " 30 ", want: "30"},
		{name: "zero", input: "0", want: "0"},
		{name: "empty", input: "", wantErr: ErrInvalidAmount},
		{name: "garbage", input: "12a", wantErr: ErrInvalidAmount},
		{name: "negative", input: "-1.00", wantErr: ErrNegativeAmount},
		{name: "three decimals", input: "1.005", wantErr: ErrTooPrecise},
		{name: "largest amount", input: "9999999999.99", want: "9999999999.99"},
		{name: "one cent over the limit", input: "10000000000.00", wantErr: ErrTooLarge},
		{name: "beyond int64 cents", input: "100000000000000000.00", wantErr: ErrTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCentsRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("1234.56")
	cents := ToCents(amount)
	if cents != 123456 {
		t.Fatalf("expected 123456 cents, got %d", cents)
	}
	if !FromCents(cents).Equal(amount) {
		t.Fatalf("expected %s back, got %s", amount, FromCents(cents))
	}
}

func TestMaxAmountFitsInCents(t *testing.T) {
	if err := Validate(MaxAmount); err != nil {
		t.Fatalf("expected MaxAmount to validate, got %v", err)
	}
	if cents := ToCents(MaxAmount); cents != 999999999999 {
		t.Fatalf("expected 999999999999 cents, got %d", cents)
	}
	if err := Validate(MaxAmount.Add(OneCent)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.NewFromInt(60), decimal.NewFromInt(100)); got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
	if got := Percent(decimal.NewFromInt(1), decimal.NewFromInt(3)); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := Percent(decimal.NewFromInt(5), decimal.Zero); got != 0 {
		t.Fatalf("expected 0 for zero whole, got %v", got)
	}
}
