package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auctionhub/auctionhub-backend/api/controllers"
	"github.com/auctionhub/auctionhub-backend/api/middleware"
	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/internal/budget"
	"github.com/auctionhub/auctionhub-backend/internal/engine"
	"github.com/auctionhub/auctionhub-backend/pkg/config"
	"github.com/auctionhub/auctionhub-backend/pkg/db"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
	"github.com/auctionhub/auctionhub-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. The engine owns all writes
// that race with the countdown timer; the services cover setup and reads.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DBPinger db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Auctions auctions.Service
	Bidding  bidding.Service
	Budgets  budget.Service
	Engine   engine.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var redisPinger redis.Pinger
	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		redisPinger = deps.Redis
		idemStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auctions", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		// Read surface is open to any authenticated actor.
		r.Get("/{auctionID}", controllers.GetAuction(deps.Auctions, logg))
		r.Get("/{auctionID}/sales", controllers.ListSales(deps.Auctions, logg))
		r.Get("/{auctionID}/budgets", controllers.ListEventBudgets(deps.Budgets, logg))
		r.Get("/{auctionID}/budgets/me", controllers.MyBudget(deps.Budgets, logg))
		r.Get("/{auctionID}/items/{itemID}/bids", controllers.ListItemBids(deps.Bidding, logg))
		r.Get("/{auctionID}/items/{itemID}/bids/winning", controllers.GetWinningBid(deps.Bidding, logg))

		// Bidding requires a bidder token; the party comes from its claims.
		r.Post("/{auctionID}/items/{itemID}/bids", controllers.SubmitBid(deps.Engine, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleOperator), logg))

			r.Post("/", controllers.CreateAuction(deps.Auctions, logg))
			r.Post("/{auctionID}/items", controllers.AssignItems(deps.Auctions, logg))
			r.Patch("/{auctionID}/settings", controllers.UpdateAuctionSettings(deps.Engine, logg))

			r.Post("/{auctionID}/start", controllers.StartAuction(deps.Engine, logg))
			r.Post("/{auctionID}/pause", controllers.PauseAuction(deps.Engine, logg))
			r.Post("/{auctionID}/resume", controllers.ResumeAuction(deps.Engine, logg))
			r.Post("/{auctionID}/cancel", controllers.CancelAuction(deps.Engine, logg))

			r.Post("/{auctionID}/items/{itemID}/start", controllers.StartItem(deps.Engine, logg))
			r.Post("/{auctionID}/items/{itemID}/sold", controllers.FinalizeSold(deps.Engine, logg))
			r.Post("/{auctionID}/items/{itemID}/unsold", controllers.FinalizeUnsold(deps.Engine, logg))
		})
	})

	return r
}
