package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/splitwallet-backend/api/responses"
	"github.com/angelmondragon/splitwallet-backend/api/validators"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	"github.com/angelmondragon/splitwallet-backend/internal/reporting"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
)

// reportHandler resolves the shared event scope and view options before running fn.
func reportHandler(svc ledgers.Service, logg *logger.Logger, fn func(r *http.Request, scope reportScope) (any, error)) http.HandlerFunc {
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
		out, err := fn(r, reportScope{svc: svc, owner: owner, event: eventID, opts: opts})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

type reportScope struct {
	svc   ledgers.Service
	owner uuid.UUID
	event uuid.UUID
	opts  ledgers.ViewOptions
}

func ReportCategories(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(svc, logg, func(r *http.Request, s reportScope) (any, error) {
		return s.svc.CategoryReport(r.Context(), s.owner, s.event, s.opts)
	})
}

// ReportTimeline buckets spending by ?granularity=day|month|year, month by default.
func ReportTimeline(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(svc, logg, func(r *http.Request, s reportScope) (any, error) {
		raw, err := validators.ParseQueryOneOf(r, "granularity", string(reporting.GranularityMonth),
			string(reporting.GranularityDay), string(reporting.GranularityMonth), string(reporting.GranularityYear))
		if err != nil {
			return nil, err
		}
		return s.svc.TimeReport(r.Context(), s.owner, s.event, reporting.Granularity(raw), s.opts)
	})
}

func ReportMember(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(svc, logg, func(r *http.Request, s reportScope) (any, error) {
		memberID, err := validators.ParseURLUUID(r, "memberId")
		if err != nil {
			return nil, err
		}
		return s.svc.MemberReport(r.Context(), s.owner, s.event, memberID, s.opts)
	})
}

func ReportMemberCategories(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(svc, logg, func(r *http.Request, s reportScope) (any, error) {
		memberID, err := validators.ParseURLUUID(r, "memberId")
		if err != nil {
			return nil, err
		}
		return s.svc.MemberCategories(r.Context(), s.owner, s.event, memberID, s.opts)
	})
}

// ReportAudit lists each expense with the shares it allocates.
func ReportAudit(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(svc, logg, func(r *http.Request, s reportScope) (any, error) {
		return s.svc.AuditTrail(r.Context(), s.owner, s.event, s.opts)
	})
}

func ReportSummary(svc ledgers.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(svc, logg, func(r *http.Request, s reportScope) (any, error) {
		return s.svc.Summary(r.Context(), s.owner, s.event, s.opts)
	})
}
