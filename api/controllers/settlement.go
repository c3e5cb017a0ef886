package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/splitwallet-backend/api/responses"
	"github.com/angelmondragon/splitwallet-backend/api/validators"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

// Balances returns every member's paid, share and net position plus the pairwise matrix.
func Balances(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		owner, eventID, err := eventScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := viewOptions(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sheet, err := svc.Balances(r.Context(), owner, eventID, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sheet)
	}
}

// SettlementPlan previews the transfers that would settle the event. Nothing is persisted.
func SettlementPlan(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		owner, eventID, err := eventScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := viewOptions(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Plan(r.Context(), owner, eventID, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SettlementRecord computes the plan and stores its transfers in one step.
func SettlementRecord(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		owner, eventID, err := eventScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := viewOptions(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recorded, err := svc.RecordPlan(r.Context(), owner, eventID, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, recorded)
	}
}

type transactionRequest struct {
	PayerID   string     `json:"payer_id" validate:"required,uuid"`
	PayeeID   string     `json:"payee_id" validate:"required,uuid"`
	Amount    string     `json:"amount" validate:"required"`
	ExpenseID string     `json:"expense_id" validate:"omitempty,uuid"`
	Note      string     `json:"note" validate:"max=200"`
	SettledAt *time.Time `json:"settled_at"`
}

func (r transactionRequest) toInput() (ledgers.TransactionInput, error) {
	ids, err := parseUUIDs([]string{strings.TrimSpace(r.PayerID), strings.TrimSpace(r.PayeeID)}, "payer_id/payee_id")
	if err != nil {
		return ledgers.TransactionInput{}, err
	}
	amount, err := money.Parse(r.Amount)
	if err != nil {
		return ledgers.TransactionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{"field": "amount"})
	}
	input := ledgers.TransactionInput{
		PayerID: ids[0],
		PayeeID: ids[1],
		Amount:  amount,
		Note:    strings.TrimSpace(r.Note),
	}
	if raw := strings.TrimSpace(r.ExpenseID); raw != "" {
		expenseID, err := uuid.Parse(raw)
		if err != nil {
			return ledgers.TransactionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense_id")
		}
		input.ExpenseID = &expenseID
	}
	if r.SettledAt != nil {
		input.SettledAt = r.SettledAt.UTC()
	}
	return input, nil
}

// TransactionRecord stores a manual transfer between two members.
func TransactionRecord(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		owner, eventID, err := eventScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload transactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txn, err := svc.RecordTransaction(r.Context(), owner, eventID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

func TransactionList(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		owner, eventID, err := eventScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txns, err := svc.ListTransactions(r.Context(), owner, eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txns)
	}
}
