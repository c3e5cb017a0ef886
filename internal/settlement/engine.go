// Package settlement is the balance and settlement engine.
//
// Every function here is pure: it reads a Ledger snapshot and returns new values. Nothing is cached
// between calls, nothing is logged, and no call mutates its input, so concurrent callers only need to
// hand in their own snapshot.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

// Engine bundles the allocation and settlement policies applied to a ledger.
type Engine struct {
	Allocator Allocator
	Planner   Planner
}

// Result is a balance sheet together with the transactions that settle it.
type Result struct {
	Sheet        *BalanceSheet `json:"balances"`
	Transactions []Transaction `json:"transactions"`
}

// NewEngine builds an engine. An invalid policy falls back to member order and a non-positive
// tolerance to one cent.
func NewEngine(policy enums.RemainderPolicy, tolerance decimal.Decimal) Engine {
	if !policy.IsValid() {
		policy = enums.RemainderPolicyMemberOrder
	}
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return Engine{
		Allocator: Allocator{Policy: policy},
		Planner:   Planner{Tolerance: tolerance},
	}
}

// Aggregate folds the ledger into a balance sheet.
func (e Engine) Aggregate(ledger Ledger) (*BalanceSheet, error) {
	return aggregate(e.Allocator, ledger)
}

// Settle aggregates the ledger and plans the settling transactions.
func (e Engine) Settle(ledger Ledger) (*Result, error) {
	sheet, err := e.Aggregate(ledger)
	if err != nil {
		return nil, err
	}
	txns, err := e.Planner.Plan(sheet)
	if err != nil {
		return nil, err
	}
	return &Result{Sheet: sheet, Transactions: txns}, nil
}
