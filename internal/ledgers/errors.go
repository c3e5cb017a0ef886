package ledgers

import (
	"errors"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/internal/reporting"
	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
)

// mapEngineError converts engine sentinels into typed errors. Unknown errors pass through.
func mapEngineError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, settlement.ErrInvalidExpense):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidExpense, err, "expense cannot be split").
			WithDetails(map[string]any{"errors": errorMessages(err)})
	case errors.Is(err, settlement.ErrEmptyLedger):
		return pkgerrors.Wrap(pkgerrors.CodeEmptyLedger, err, "event has expenses but no members")
	case errors.Is(err, settlement.ErrUnbalancedLedger):
		return pkgerrors.Wrap(pkgerrors.CodeUnbalancedLedger, err, "ledger does not balance")
	case errors.Is(err, reporting.ErrMemberNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "member not found")
	default:
		return err
	}
}

func errorMessages(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}

// errorCode labels failures for metrics.
func errorCode(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeInternal)
}
