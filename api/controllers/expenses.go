package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/splitwallet-backend/api/responses"
	"github.com/angelmondragon/splitwallet-backend/api/validators"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

type expenseRequest struct {
	Description    string   `json:"description" validate:"required,max=255"`
	Date           string   `json:"date" validate:"required"`
	Amount         string   `json:"amount" validate:"required"`
	PayerID        string   `json:"payer_id" validate:"required,uuid"`
	ContributorIDs []string `json:"contributor_ids" validate:"required,min=1,dive,uuid"`
	Category       string   `json:"category"`
	PaymentMethod  string   `json:"payment_method"`
	Currency       string   `json:"currency" validate:"omitempty,len=3"`
	Location       string   `json:"location" validate:"max=50"`
	Notes          string   `json:"notes"`
	ApprovalStatus string   `json:"approval_status"`
	DocumentRef    string   `json:"document_ref"`
	Settled        bool     `json:"settled"`
}

func (r expenseRequest) toInput() (ledgers.ExpenseInput, error) {
	date, err := validators.ParseDate(r.Date, "date")
	if err != nil {
		return ledgers.ExpenseInput{}, err
	}
	amount, err := money.Parse(r.Amount)
	if err != nil {
		return ledgers.ExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{"field": "amount"})
	}
	payerID, err := uuid.Parse(strings.TrimSpace(r.PayerID))
	if err != nil {
		return ledgers.ExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payer_id")
	}
	contributors, err := parseUUIDs(r.ContributorIDs, "contributor_ids")
	if err != nil {
		return ledgers.ExpenseInput{}, err
	}

	return ledgers.ExpenseInput{
		Description:    strings.TrimSpace(r.Description),
		Date:           date,
		Amount:         amount,
		PayerID:        payerID,
		ContributorIDs: contributors,
		Category:       enums.ExpenseCategory(strings.ToLower(strings.TrimSpace(r.Category))),
		PaymentMethod:  enums.PaymentMethod(strings.ToLower(strings.TrimSpace(r.PaymentMethod))),
		Currency:       enums.Currency(strings.ToUpper(strings.TrimSpace(r.Currency))),
		Location:       strings.TrimSpace(r.Location),
		Notes:          strings.TrimSpace(r.Notes),
		ApprovalStatus: enums.ApprovalStatus(strings.ToLower(strings.TrimSpace(r.ApprovalStatus))),
		DocumentRef:    strings.TrimSpace(r.DocumentRef),
		Settled:        r.Settled,
	}, nil
}

func decodeExpense(r *http.Request) (ledgers.ExpenseInput, error) {
	var payload expenseRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return ledgers.ExpenseInput{}, err
	}
	return payload.toInput()
}

// ExpenseCreate records an expense. The split is derived on read, never stored.
func ExpenseCreate(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
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
		input, err := decodeExpense(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.CreateExpense(r.Context(), owner, eventID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ExpenseUpdate replaces every field of the expense, contributors included.
func ExpenseUpdate(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
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
		expenseID, err := validators.ParseURLUUID(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeExpense(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.UpdateExpense(r.Context(), owner, eventID, expenseID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

func ExpenseDelete(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
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
		expenseID, err := validators.ParseURLUUID(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteExpense(r.Context(), owner, eventID, expenseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ExpenseList(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
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
		expenses, err := svc.ListExpenses(r.Context(), owner, eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expenses)
	}
}
