package settlement

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

// Shares maps each contributor to the portion of an expense attributed to them.
type Shares map[uuid.UUID]decimal.Decimal

// Total sums every share.
func (s Shares) Total() decimal.Decimal {
	total := decimal.Zero
	for _, share := range s {
		total = total.Add(share)
	}
	return total
}

// Allocator splits expense amounts across contributors.
//
// The amount is divided in whole cents. Leftover cents (amount mod contributors) are handed out one
// at a time according to Policy, so the shares always add back up to the exact amount.
type Allocator struct {
	Policy enums.RemainderPolicy
	// AllowEmpty turns a contributor-less expense into an empty share map instead of an error.
	AllowEmpty bool
}

// DefaultAllocator distributes remainders by ascending member id and rejects empty contributor sets.
var DefaultAllocator = Allocator{Policy: enums.RemainderPolicyMemberOrder}

// Allocate splits expense using DefaultAllocator.
func Allocate(expense Expense) (Shares, error) {
	return DefaultAllocator.Allocate(expense)
}

// Allocate returns the share of every contributor of expense.
func (a Allocator) Allocate(expense Expense) (Shares, error) {
	if err := money.Validate(expense.Amount); err != nil {
		return nil, invalidExpense(expense.ID, "%v", err)
	}
	if len(expense.ContributorIDs) == 0 {
		if a.AllowEmpty {
			return Shares{}, nil
		}
		return nil, invalidExpense(expense.ID, "no contributors")
	}

	contributors, err := sortedContributors(expense)
	if err != nil {
		return nil, err
	}

	n := int64(len(contributors))
	cents := money.ToCents(expense.Amount)
	base := cents / n
	remainder := cents % n

	order := contributors
	if a.Policy == enums.RemainderPolicyPayer && remainder > 0 && expense.HasContributor(expense.PayerID) {
		order = payerFirst(expense.PayerID, remainder)
	}

	shares := make(Shares, len(contributors))
	for _, id := range contributors {
		shares[id] = money.FromCents(base)
	}
	for i := int64(0); i < remainder; i++ {
		id := order[i]
		shares[id] = shares[id].Add(money.OneCent)
	}
	return shares, nil
}

func sortedContributors(expense Expense) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(expense.ContributorIDs))
	out := make([]uuid.UUID, 0, len(expense.ContributorIDs))
	for _, id := range expense.ContributorIDs {
		if id == uuid.Nil {
			return nil, invalidExpense(expense.ID, "contributor id is required")
		}
		if _, dup := seen[id]; dup {
			return nil, invalidExpense(expense.ID, "duplicate contributor %s", id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessID(out[i], out[j])
	})
	return out, nil
}

// payerFirst returns an order where the payer receives every remainder cent.
func payerFirst(payerID uuid.UUID, remainder int64) []uuid.UUID {
	order := make([]uuid.UUID, remainder)
	for i := range order {
		order[i] = payerID
	}
	return order
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
