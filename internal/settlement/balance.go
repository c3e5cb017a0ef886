package settlement

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

// MemberBalance is one member's position across the whole ledger.
type MemberBalance struct {
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
	// Paid is the sum of every expense the member paid, whether or not they contributed to it.
	Paid decimal.Decimal `json:"paid"`
	// Share is the sum of the member's allocated shares.
	Share decimal.Decimal `json:"share"`
	// Net is Paid minus Share. Positive means the member is owed money.
	Net          decimal.Decimal `json:"net"`
	PaidPercent  float64         `json:"paid_percent"`
	ExpenseCount int             `json:"expense_count"`
}

// PairBalance holds what two members covered for each other. A sorts before B.
type PairBalance struct {
	A           uuid.UUID       `json:"a"`
	B           uuid.UUID       `json:"b"`
	PaidByAForB decimal.Decimal `json:"paid_by_a_for_b"`
	PaidByBForA decimal.Decimal `json:"paid_by_b_for_a"`
	// Net is PaidByAForB minus PaidByBForA. Positive means B owes A.
	Net decimal.Decimal `json:"net"`
}

// BalanceSheet is the folded result of a ledger.
//
// Invariants: Net(a, b) == -Net(b, a) for every pair, and the Net of all members sums to zero for a
// closed ledger.
type BalanceSheet struct {
	Total        decimal.Decimal `json:"total"`
	ExpenseCount int             `json:"expense_count"`
	Members      []MemberBalance `json:"members"`
	Pairs        []PairBalance   `json:"pairs"`

	memberIndex map[uuid.UUID]int
	pairIndex   map[pairKey]int
}

type pairKey struct {
	a, b uuid.UUID
}

func orderedKey(x, y uuid.UUID) (pairKey, bool) {
	if lessID(x, y) {
		return pairKey{a: x, b: y}, false
	}
	return pairKey{a: y, b: x}, true
}

// Member returns the balance of the given member.
func (s *BalanceSheet) Member(id uuid.UUID) (MemberBalance, bool) {
	idx, ok := s.memberIndex[id]
	if !ok {
		return MemberBalance{}, false
	}
	return s.Members[idx], true
}

// PaidFor returns the sum of payer's expenses attributed to beneficiary as a non-paying contributor.
func (s *BalanceSheet) PaidFor(payer, beneficiary uuid.UUID) decimal.Decimal {
	if payer == beneficiary {
		return decimal.Zero
	}
	key, swapped := orderedKey(payer, beneficiary)
	idx, ok := s.pairIndex[key]
	if !ok {
		return decimal.Zero
	}
	if swapped {
		return s.Pairs[idx].PaidByBForA
	}
	return s.Pairs[idx].PaidByAForB
}

// Net returns PaidFor(a, b) - PaidFor(b, a). Positive means b owes a.
func (s *BalanceSheet) Net(a, b uuid.UUID) decimal.Decimal {
	return s.PaidFor(a, b).Sub(s.PaidFor(b, a))
}

// UnmarshalJSON restores the lookup indexes alongside the exported fields.
func (s *BalanceSheet) UnmarshalJSON(data []byte) error {
	type plain BalanceSheet
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = BalanceSheet(decoded)
	s.reindex()
	return nil
}

func (s *BalanceSheet) reindex() {
	s.memberIndex = make(map[uuid.UUID]int, len(s.Members))
	for i, member := range s.Members {
		s.memberIndex[member.MemberID] = i
	}
	s.pairIndex = make(map[pairKey]int, len(s.Pairs))
	for i, pair := range s.Pairs {
		s.pairIndex[pairKey{a: pair.A, b: pair.B}] = i
	}
}

// Validate checks every expense of the ledger against its members and reports all problems at once.
func Validate(ledger Ledger) error {
	if len(ledger.Members) == 0 {
		if len(ledger.Expenses) > 0 {
			return ErrEmptyLedger
		}
		return nil
	}

	members := make(map[uuid.UUID]Member, len(ledger.Members))
	for _, member := range ledger.Members {
		members[member.ID] = member
	}

	var errs error
	for _, expense := range ledger.Expenses {
		errs = multierr.Append(errs, validateExpense(expense, members))
	}
	return errs
}

func validateExpense(expense Expense, members map[uuid.UUID]Member) error {
	if len(expense.ContributorIDs) == 0 {
		return invalidExpense(expense.ID, "no contributors")
	}
	payer, ok := members[expense.PayerID]
	if !ok {
		return invalidExpense(expense.ID, "payer %s is not a member of the event", expense.PayerID)
	}
	if payer.EventID != expense.EventID {
		return invalidExpense(expense.ID, "payer %s belongs to another event", expense.PayerID)
	}
	for _, id := range expense.ContributorIDs {
		contributor, ok := members[id]
		if !ok {
			return invalidExpense(expense.ID, "contributor %s is not a member of the event", id)
		}
		if contributor.EventID != expense.EventID {
			return invalidExpense(expense.ID, "contributor %s belongs to another event", id)
		}
	}
	return nil
}

// Aggregate folds expenses into a BalanceSheet using DefaultAllocator.
func Aggregate(members []Member, expenses []Expense) (*BalanceSheet, error) {
	return aggregate(DefaultAllocator, Ledger{Members: members, Expenses: expenses})
}

func aggregate(allocator Allocator, ledger Ledger) (*BalanceSheet, error) {
	if err := Validate(ledger); err != nil {
		return nil, err
	}

	paid := make(map[uuid.UUID]decimal.Decimal, len(ledger.Members))
	share := make(map[uuid.UUID]decimal.Decimal, len(ledger.Members))
	count := make(map[uuid.UUID]int, len(ledger.Members))
	pairs := make(map[pairKey]*PairBalance)
	total := decimal.Zero

	for _, expense := range ledger.Expenses {
		shares, err := allocator.Allocate(expense)
		if err != nil {
			return nil, err
		}

		total = total.Add(expense.Amount)
		paid[expense.PayerID] = paid[expense.PayerID].Add(expense.Amount)
		count[expense.PayerID]++

		for contributorID, amount := range shares {
			share[contributorID] = share[contributorID].Add(amount)
			if contributorID == expense.PayerID {
				continue
			}
			key, swapped := orderedKey(expense.PayerID, contributorID)
			pair, ok := pairs[key]
			if !ok {
				pair = &PairBalance{A: key.a, B: key.b}
				pairs[key] = pair
			}
			if swapped {
				pair.PaidByBForA = pair.PaidByBForA.Add(amount)
			} else {
				pair.PaidByAForB = pair.PaidByAForB.Add(amount)
			}
		}
	}

	sheet := &BalanceSheet{
		Total:        total,
		ExpenseCount: len(ledger.Expenses),
		Members:      make([]MemberBalance, 0, len(ledger.Members)),
		Pairs:        make([]PairBalance, 0, len(pairs)),
	}

	for _, member := range ledger.Members {
		p := paid[member.ID]
		s := share[member.ID]
		sheet.Members = append(sheet.Members, MemberBalance{
			MemberID:     member.ID,
			Name:         member.Name,
			Paid:         p,
			Share:        s,
			Net:          p.Sub(s),
			PaidPercent:  money.Percent(p, total),
			ExpenseCount: count[member.ID],
		})
	}
	sort.Slice(sheet.Members, func(i, j int) bool {
		if sheet.Members[i].Name != sheet.Members[j].Name {
			return sheet.Members[i].Name < sheet.Members[j].Name
		}
		return lessID(sheet.Members[i].MemberID, sheet.Members[j].MemberID)
	})

	for _, pair := range pairs {
		pair.Net = pair.PaidByAForB.Sub(pair.PaidByBForA)
		sheet.Pairs = append(sheet.Pairs, *pair)
	}
	sort.Slice(sheet.Pairs, func(i, j int) bool {
		if sheet.Pairs[i].A != sheet.Pairs[j].A {
			return lessID(sheet.Pairs[i].A, sheet.Pairs[j].A)
		}
		return lessID(sheet.Pairs[i].B, sheet.Pairs[j].B)
	})

	sheet.reindex()
	return sheet, nil
}
