package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentreview/internal/domain/audit"
	"talentreview/internal/domain/auth"
	"talentreview/internal/domain/competencies"
	"talentreview/internal/domain/cycles"
	"talentreview/internal/domain/evaluations"
	"talentreview/internal/domain/notifications"
	"talentreview/internal/platform/config"
	"talentreview/internal/platform/db"
	"talentreview/internal/platform/jobs"
	"talentreview/internal/platform/metrics"
	audithandler "talentreview/internal/transport/http/handlers/audit"
	authhandler "talentreview/internal/transport/http/handlers/auth"
	competencieshandler "talentreview/internal/transport/http/handlers/competencies"
	cycleshandler "talentreview/internal/transport/http/handlers/cycles"
	evaluationshandler "talentreview/internal/transport/http/handlers/evaluations"
	notificationshandler "talentreview/internal/transport/http/handlers/notifications"
	reportshandler "talentreview/internal/transport/http/handlers/reports"
	"talentreview/internal/transport/http/middleware"
	"talentreview/migrations"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	stopJobs context.CancelFunc
}

// New connects to the database, prepares the schema and wires every
// service and route. Background jobs start immediately; Close stops them.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("cycle timezone: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrationsFS(cfg)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	guard := cycles.NewGuard(cycles.WithLocation(loc))

	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore, cfg.JWTSecret, cfg.TokenTTL)
	auditService := audit.New(pool)
	notificationService := notifications.New(notifications.NewStore(pool))
	competencyService := competencies.NewService(competencies.NewStore(pool))
	cycleService := cycles.NewService(cycles.NewStore(pool), guard)
	evaluationService := evaluations.NewService(evaluations.NewStore(pool), cycleService, guard)
	evaluationService.Catalog = competencyService
	evaluationService.Notify = notificationService
	evaluationService.Metrics = collector

	jobsService := jobs.New(jobs.NewStore(pool), cycleService, cfg.CycleCloseInterval)
	jobsService.Metrics = collector

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		throttled := middleware.WithRejectHook(collector.RateLimited)
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, throttled))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, throttled))

		authhandler.NewHandler(authService).RegisterRoutes(r)
		competencieshandler.NewHandler(competencyService).RegisterRoutes(r)
		cycleshandler.NewHandler(cycleService, authStore, auditService, jobsService).RegisterRoutes(r)
		evaluationshandler.NewHandler(evaluationService, authStore, auditService).RegisterRoutes(r)
		reportshandler.NewHandler(evaluationService, cycleService, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore).RegisterRoutes(r)
	})

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	jobsService.Start(jobsCtx)

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Jobs:     jobsService,
		Metrics:  collector,
		stopJobs: stopJobs,
	}, nil
}

func (a *App) Close() {
	if a.stopJobs != nil {
		a.stopJobs()
	}
	a.DB.Close()
}

func migrationsFS(cfg config.Config) fs.FS {
	if strings.TrimSpace(cfg.MigrationsDir) != "" {
		return os.DirFS(cfg.MigrationsDir)
	}
	return migrations.FS
}

// SetupLogger installs the JSON slog handler used by every package.
func SetupLogger(cfg config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("service", "talentreview", "env", cfg.Environment))
}

// Run loads configuration, serves HTTP and shuts down gracefully on SIGINT
// or SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
