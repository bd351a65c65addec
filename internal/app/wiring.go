package app

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/calc-content-backend/internal/adapter/postgres"
	"github.com/heartmarshall/calc-content-backend/internal/adapter/postgres/content"
	"github.com/heartmarshall/calc-content-backend/internal/adapter/postgres/dropdownconfig"
	"github.com/heartmarshall/calc-content-backend/internal/config"
	"github.com/heartmarshall/calc-content-backend/internal/domain"
	"github.com/heartmarshall/calc-content-backend/internal/dropdown/assembler"
	"github.com/heartmarshall/calc-content-backend/internal/dropdown/keypattern"
	"github.com/heartmarshall/calc-content-backend/internal/service/dropdown"
	"github.com/heartmarshall/calc-content-backend/internal/transport/middleware"
	"github.com/heartmarshall/calc-content-backend/internal/transport/rest"
	"github.com/heartmarshall/calc-content-backend/pkg/ttlcache"
)

// NewDropdownService builds the dropdown service on top of pool.
func NewDropdownService(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool) *dropdown.Service {
	types := make([]domain.ComponentType, 0, len(cfg.Dropdowns.AllowedTypes))
	for _, t := range cfg.Dropdowns.AllowedTypes {
		types = append(types, domain.ComponentType(t))
	}

	return dropdown.NewService(
		logger,
		content.New(pool),
		dropdownconfig.New(pool),
		postgres.NewTxManager(pool),
		ttlcache.New[domain.DropdownSet](cfg.Cache.TTL),
		assembler.New(keypattern.New()),
		dropdown.Options{
			UsePrecomputed:   cfg.Dropdowns.UsePrecomputed,
			FallbackLanguage: cfg.Dropdowns.FallbackLanguage,
			AllowedTypes:     types,
			StatsKeyLimit:    cfg.Cache.StatsKeyLimit,
		},
	)
}

// NewRouter registers every route behind the middleware chain. The returned
// cleanup stops background work owned by the router.
func NewRouter(cfg *config.Config, logger *slog.Logger, svc *dropdown.Service, db rest.DBPinger) (http.Handler, func()) {
	mux := http.NewServeMux()

	healthHandler := rest.NewHealthHandler(db, svc, BuildVersion())
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)

	dropdownHandler := rest.NewDropdownHandler(svc, logger)
	mux.HandleFunc("GET /api/dropdowns/{screen}/{language}", dropdownHandler.Dropdowns)
	mux.HandleFunc("GET /api/content/cache/stats", dropdownHandler.CacheStats)
	mux.HandleFunc("DELETE /api/content/cache/clear", dropdownHandler.ClearCache)
	mux.HandleFunc("/", rest.NotFound)

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}

	cleanup := func() {}
	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(cfg.RateLimit)
		mws = append(mws, rl.Middleware())
		cleanup = rl.Stop
	}

	return middleware.Chain(mws...)(mux), cleanup
}
