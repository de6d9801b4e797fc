package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/oracle/internal/api/handlers"
	mw "github.com/Harshitk-cp/oracle/internal/api/middleware"
	"github.com/Harshitk-cp/oracle/internal/buildconfig"
	"github.com/Harshitk-cp/oracle/internal/config"
	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/service"
	"github.com/Harshitk-cp/oracle/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Deps are the storage backends the App is built on.
type Deps struct {
	Entries    handlers.EntryStore
	Hypotheses domain.HypothesisStore
	// Ping reports backend health for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// Options carry the settings read from config.
type Options struct {
	APIKey          string
	RateLimitRPS    float64
	RateLimitBurst  int
	ObserveInterval time.Duration
	LookbackDays    int
}

// OptionsFromConfig reads Options from the environment.
func OptionsFromConfig() Options {
	return Options{
		APIKey:          config.APIKey(),
		RateLimitRPS:    config.RateLimitRPS(),
		RateLimitBurst:  config.RateLimitBurst(),
		ObserveInterval: config.ObserveInterval(),
		LookbackDays:    config.LookbackDays(),
	}
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router     *chi.Mux
	Hypotheses *service.HypothesisService
	Runner     *service.ObservationRunner
	metrics    *mw.MetricsCollector
	ping       func(ctx context.Context) error
	startTime  time.Time
	done       chan struct{}
}

// NewPostgresApp wires the App onto a Postgres pool.
func NewPostgresApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	return NewApp(Deps{
		Entries:    store.NewEntryStore(db),
		Hypotheses: store.NewHypothesisStore(db),
		Ping:       db.Ping,
	}, OptionsFromConfig(), logger)
}

func NewApp(deps Deps, opts Options, logger *zap.Logger) *App {
	// Services
	engine := service.NewHypothesisEngine(logger)
	hypothesisSvc := service.NewHypothesisService(engine, deps.Hypotheses, logger)
	runner := service.NewObservationRunner(deps.Entries, service.NewObserver(logger), hypothesisSvc, logger)
	if opts.ObserveInterval > 0 {
		runner.SetInterval(opts.ObserveInterval)
	}
	if opts.LookbackDays > 0 {
		runner.SetLookbackDays(opts.LookbackDays)
	}

	// Handlers
	hypothesisHandler := handlers.NewHypothesisHandler(hypothesisSvc, logger)
	observationHandler := handlers.NewObservationHandler(runner, logger)
	entryHandler := handlers.NewEntryHandler(deps.Entries)

	r := chi.NewRouter()

	app := &App{
		Router:     r,
		Hypotheses: hypothesisSvc,
		Runner:     runner,
		metrics:    mw.NewMetricsCollector(),
		ping:       deps.Ping,
		startTime:  time.Now(),
		done:       make(chan struct{}),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger, "/health", "/metrics"))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, app.done))

	// Health, metrics and version (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())
	r.Get("/version", versionHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", entryHandler.Create)
			r.Get("/{id}", entryHandler.GetByID)
		})

		r.Post("/observations", observationHandler.Run)

		r.Route("/hypotheses", func(r chi.Router) {
			r.Get("/", hypothesisHandler.List)
			r.Post("/evidence", hypothesisHandler.RecordEvidence)
			r.Post("/sweep", hypothesisHandler.Sweep)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", hypothesisHandler.GetByID)
				r.Post("/confirm", hypothesisHandler.Confirm)
				r.Post("/reject", hypothesisHandler.Reject)
			})
		})
	})

	return app
}

// Close stops goroutines owned by the router.
func (app *App) Close() {
	close(app.done)
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if app.ping != nil {
			if err := app.ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"requests":       app.metrics.Snapshot(),
			"observer":       app.Runner.Stats(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildconfig.VersionInfo())
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ handlers.EntryStore    = (*store.EntryStore)(nil)
	_ domain.HypothesisStore = (*store.HypothesisStore)(nil)
)
