package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/splitwallet-backend/api/responses"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
)

// OwnerHeader carries the id of the user the request acts for. Authentication happens upstream.
const OwnerHeader = "X-User-Id"

// OwnerContext requires a valid owner id and stores it on the request context and log fields.
func OwnerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(OwnerHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "X-User-Id header required"))
				return
			}
			ownerID, err := uuid.Parse(raw)
			if err != nil || ownerID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "X-User-Id must be a uuid"))
				return
			}

			ctx := WithOwnerID(r.Context(), ownerID.String())
			if logg != nil {
				ctx = logg.WithOwnerID(ctx, ownerID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
