package settlement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidExpense marks input the engine refuses to compute over.
	ErrInvalidExpense = errors.New("invalid expense")
	// ErrUnbalancedLedger signals net positions that do not sum to zero; an integrity bug upstream.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
	// ErrEmptyLedger is returned when expenses exist but there are no members to carry them.
	ErrEmptyLedger = errors.New("empty ledger")
)

// ExpenseError describes why a single expense was rejected. It unwraps to ErrInvalidExpense.
type ExpenseError struct {
	ExpenseID uuid.UUID
	Reason    string
}

func (e *ExpenseError) Error() string {
	return fmt.Sprintf("invalid expense %s: %s", e.ExpenseID, e.Reason)
}

func (e *ExpenseError) Unwrap() error {
	return ErrInvalidExpense
}

func invalidExpense(id uuid.UUID, format string, args ...any) error {
	return &ExpenseError{ExpenseID: id, Reason: fmt.Sprintf(format, args...)}
}
