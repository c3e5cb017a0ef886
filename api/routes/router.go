package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/splitwallet-backend/api/controllers"
	"github.com/angelmondragon/splitwallet-backend/api/middleware"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	"github.com/angelmondragon/splitwallet-backend/pkg/config"
	"github.com/angelmondragon/splitwallet-backend/pkg/db"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/redis"
)

// Deps groups what the router needs. Redis and Gatherer may be nil.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Gatherer prometheus.Gatherer
	Ledgers  ledgers.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg, svc := deps.Config, deps.Logger, deps.Ledgers

	// typed nils must not reach the interfaces below
	var (
		idempotencyStore redis.IdempotencyStore
		redisPinger      controllers.Pinger
	)
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		redisPinger = deps.Redis
	}
	var dbPinger controllers.Pinger
	if deps.DB != nil {
		dbPinger = deps.DB
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger,
		}))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OwnerContext(logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Cache.IdempotencyTTL, logg))

		r.Route("/events", func(r chi.Router) {
			r.Post("/", controllers.EventCreate(svc, logg))
			r.Get("/", controllers.EventList(svc, logg))
			r.Get("/analytics", controllers.OwnerAnalytics(svc, logg))
			r.Get("/analytics/by-year", controllers.EventsByYear(svc, logg))

			r.Route("/{eventId}", func(r chi.Router) {
				r.Get("/", controllers.EventGet(svc, logg))
				r.Patch("/", controllers.EventUpdate(svc, logg))
				r.Delete("/", controllers.EventDelete(svc, logg))

				r.Post("/members", controllers.MemberAdd(svc, logg))
				r.Get("/members", controllers.MemberList(svc, logg))
				r.Patch("/members/{memberId}", controllers.MemberRename(svc, logg))
				r.Delete("/members/{memberId}", controllers.MemberDelete(svc, logg))

				r.Post("/expenses", controllers.ExpenseCreate(svc, logg))
				r.Get("/expenses", controllers.ExpenseList(svc, logg))
				r.Put("/expenses/{expenseId}", controllers.ExpenseUpdate(svc, logg))
				r.Delete("/expenses/{expenseId}", controllers.ExpenseDelete(svc, logg))

				r.Get("/balances", controllers.Balances(svc, logg))
				r.Get("/settlement", controllers.SettlementPlan(svc, logg))
				r.Post("/settlement", controllers.SettlementRecord(svc, logg))
				r.Post("/transactions", controllers.TransactionRecord(svc, logg))
				r.Get("/transactions", controllers.TransactionList(svc, logg))
				r.Get("/summary", controllers.ReportSummary(svc, logg))

				r.Route("/reports", func(r chi.Router) {
					r.Get("/categories", controllers.ReportCategories(svc, logg))
					r.Get("/monthly", controllers.ReportTimeline(svc, logg))
					r.Get("/members/{memberId}", controllers.ReportMember(svc, logg))
					r.Get("/members/{memberId}/categories", controllers.ReportMemberCategories(svc, logg))
					r.Get("/audit", controllers.ReportAudit(svc, logg))
				})
			})
		})
	})

	return r
}
