package settlement

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

// DefaultTolerance is the largest imbalance accepted between creditors and debtors: one minor
// currency unit.
var DefaultTolerance = money.OneCent

// Planner turns net positions into settling transactions.
type Planner struct {
	Tolerance decimal.Decimal
}

// DefaultPlanner settles within one cent.
var DefaultPlanner = Planner{Tolerance: DefaultTolerance}

// Plan computes transactions with DefaultPlanner.
func Plan(sheet *BalanceSheet) ([]Transaction, error) {
	return DefaultPlanner.Plan(sheet)
}

type position struct {
	id     uuid.UUID
	name   string
	amount decimal.Decimal
}

// Plan matches the largest debtor against the largest creditor until every position is settled.
//
// Every emitted transaction zeroes at least one side, so the result holds at most n-1 transfers for n
// members with a non-zero position. Equal magnitudes are broken by ascending member id. When the
// positions are off by no more than Tolerance, the difference stays with the last open member.
func (p Planner) Plan(sheet *BalanceSheet) ([]Transaction, error) {
	if sheet == nil {
		return nil, fmt.Errorf("balance sheet is required")
	}
	tolerance := p.Tolerance
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}

	if len(sheet.Members) == 0 {
		if !sheet.Total.IsZero() || sheet.ExpenseCount > 0 {
			return nil, ErrEmptyLedger
		}
		return []Transaction{}, nil
	}

	sum := decimal.Zero
	var debtors, creditors []*position
	for _, member := range sheet.Members {
		sum = sum.Add(member.Net)
		switch {
		case member.Net.IsZero():
		case member.Net.IsNegative():
			debtors = append(debtors, &position{id: member.MemberID, name: member.Name, amount: member.Net.Neg()})
		default:
			creditors = append(creditors, &position{id: member.MemberID, name: member.Name, amount: member.Net})
		}
	}
	if sum.Abs().GreaterThan(tolerance) {
		return nil, fmt.Errorf("%w: net positions sum to %s", ErrUnbalancedLedger, sum.StringFixed(money.Places))
	}

	txns := make([]Transaction, 0, len(debtors)+len(creditors))
	for len(debtors) > 0 && len(creditors) > 0 {
		sortPositions(debtors)
		sortPositions(creditors)
		debtor, creditor := debtors[0], creditors[0]

		amount := decimal.Min(debtor.amount, creditor.amount)
		txns = append(txns, Transaction{
			PayerID:   debtor.id,
			PayerName: debtor.name,
			PayeeID:   creditor.id,
			PayeeName: creditor.name,
			Amount:    amount,
		})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)
		if debtor.amount.IsZero() {
			debtors = debtors[1:]
		}
		if creditor.amount.IsZero() {
			creditors = creditors[1:]
		}
	}
	return txns, nil
}

func sortPositions(positions []*position) {
	sort.SliceStable(positions, func(i, j int) bool {
		if c := positions[i].amount.Cmp(positions[j].amount); c != 0 {
			return c > 0
		}
		return lessID(positions[i].id, positions[j].id)
	})
}

// Replay applies txns to the sheet's net positions and returns what remains for every member.
// A correct plan leaves every member at zero, except for an imbalance accepted by the tolerance.
func Replay(sheet *BalanceSheet, txns []Transaction) map[uuid.UUID]decimal.Decimal {
	residual := make(map[uuid.UUID]decimal.Decimal, len(sheet.Members))
	for _, member := range sheet.Members {
		residual[member.MemberID] = member.Net
	}
	for _, txn := range txns {
		residual[txn.PayerID] = residual[txn.PayerID].Add(txn.Amount)
		residual[txn.PayeeID] = residual[txn.PayeeID].Sub(txn.Amount)
	}
	return residual
}
