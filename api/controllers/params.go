package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/splitwallet-backend/api/middleware"
	"github.com/angelmondragon/splitwallet-backend/api/validators"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
)

func ownerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.OwnerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid owner id")
	}
	return id, nil
}

// eventScope resolves the owner and the {eventId} path parameter.
func eventScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	owner, err := ownerID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	eventID, err := validators.ParseURLUUID(r, "eventId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return owner, eventID, nil
}

func viewOptions(r *http.Request) (ledgers.ViewOptions, error) {
	approved, err := validators.ParseQueryBool(r, "approved_only", false)
	if err != nil {
		return ledgers.ViewOptions{}, err
	}
	return ledgers.ViewOptions{ApprovedOnly: approved}, nil
}

func parseUUIDs(raw []string, field string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).WithDetails(map[string]any{"field": field, "value": value})
		}
		out = append(out, id)
	}
	return out, nil
}

func serviceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable")
}
