// membershipd serves the membership API: tier eligibility, plan visibility,
// and the subscription lifecycle. On boot it runs database migrations and
// seeds the tier/plan catalog from a YAML file.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	membershipmod "github.com/firstclub/membership/modules/membership"
	"github.com/firstclub/membership/pkg/config"
	"github.com/firstclub/membership/pkg/httpserver"
	"github.com/firstclub/membership/pkg/logger"
	"github.com/firstclub/membership/pkg/pg"
	"github.com/firstclub/membership/pkg/redis"
	"github.com/firstclub/membership/svc/membership"
	"github.com/firstclub/membership/svc/membership/postgres"
)

type appConfig struct {
	Logger     logger.Config
	Postgres   pg.Config
	Redis      redis.Config
	HTTPServer httpserver.Config

	CatalogPath     string        `env:"CATALOG_PATH" envDefault:"configs/catalog.yaml"`
	CatalogCache    bool          `env:"CATALOG_CACHE_ENABLED" envDefault:"false"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	SeedDemoUser    bool          `env:"SEED_DEMO_USER" envDefault:"false"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("membershipd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	var store membership.Storage = postgres.NewStorage(pool)

	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}

	if cfg.CatalogCache {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		store = membership.NewCatalogCache(store, client, cfg.CatalogCacheTTL)
		healthchecks = append(healthchecks, redis.Healthcheck(client))
		log.Info("catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
	}

	catalog, err := membership.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if err := catalog.Seed(ctx, store); err != nil {
		return err
	}
	log.Info("catalog seeded", "tiers", len(catalog.Tiers), "plans", len(catalog.Plans))

	svc := membership.NewService(store, membership.WithLogger(log))

	if cfg.SeedDemoUser {
		if err := seedDemoUser(ctx, svc, log); err != nil {
			return err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthHandler(healthchecks...))
	r.Mount("/api/membership", membershipmod.NewModule(svc, membershipmod.WithLogger(log)).Handler())

	return httpserver.New(cfg.HTTPServer, log).Run(ctx, r)
}

func seedDemoUser(ctx context.Context, svc membership.Service, log *slog.Logger) error {
	user, err := svc.RegisterUser(ctx, "John Doe", "john.doe@example.com", "")
	switch {
	case errors.Is(err, membership.ErrEmailAlreadyUsed):
		return nil // already seeded on a previous boot
	case err != nil:
		return err
	}
	log.Info("seeded demo user", "user_id", user.ID)
	return nil
}

func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
