package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/garsonhq/backend-garson/internal/app"
	"github.com/garsonhq/backend-garson/internal/auth"
	"github.com/garsonhq/backend-garson/internal/billing"
	"github.com/garsonhq/backend-garson/internal/catalog"
	"github.com/garsonhq/backend-garson/internal/common"
	"github.com/garsonhq/backend-garson/internal/config"
	"github.com/garsonhq/backend-garson/internal/events"
	"github.com/garsonhq/backend-garson/internal/health"
	"github.com/garsonhq/backend-garson/internal/lock"
	"github.com/garsonhq/backend-garson/internal/obs"
	"github.com/garsonhq/backend-garson/internal/order"
	"github.com/garsonhq/backend-garson/internal/pricing"
	"github.com/garsonhq/backend-garson/internal/ratelimit"
	"github.com/garsonhq/backend-garson/internal/security"
	"github.com/garsonhq/backend-garson/internal/store"
	"github.com/garsonhq/backend-garson/internal/waitercall"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs.MustRegisterDomainMetrics("garson", registry)

	tracingEnabled := cfg.TracingEndpoint != ""
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "garson-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.RunMigrations(cfg.DatabaseURL, migrationsSource()); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	limiterStore, err := app.NewLimiterStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise limiter store")
	}
	taskClient, err := app.NewTaskClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task client")
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	deps := app.Dependencies{
		Context:         context.Background(),
		DB:              pool,
		Redis:           redisClient,
		Validator:       app.NewValidator(),
		LimiterStore:    limiterStore,
		TaskClient:      taskClient,
		MetricsRegistry: registry,
	}

	st := store.New(deps.DB)

	bus := &events.Bus{
		Store: st,
		Notifiers: []events.Notifier{
			events.TaskNotifier{Client: deps.TaskClient, Queue: "events"},
		},
	}

	catalogSvc := catalog.NewService(catalog.ServiceConfig{
		Store: st,
		Cache: catalog.NewCache(deps.Redis, cfg.CatalogCacheTTL),
	})
	orderSvc := order.NewService(order.ServiceConfig{
		Store:  st,
		Menu:   st,
		Bus:    bus,
		Logger: logger,
	})
	billingSvc := billing.NewService(billing.ServiceConfig{
		Store:      st,
		Orders:     st,
		Discounts:  st,
		Bus:        bus,
		Locker:     lock.Locker{R: deps.Redis},
		LockTTL:    cfg.BillLockTTL,
		DefaultFee: pricing.ServiceFeeConfig{PercentBps: cfg.ServiceFeeBps},
		History:    st,
		Logger:     logger,
	})
	callSvc := waitercall.NewService(waitercall.ServiceConfig{
		Store:  st,
		Bus:    bus,
		Logger: logger,
	})
	authSvc, err := auth.NewService(auth.Config{
		Waiters:   st,
		Secret:    cfg.JWTSecret,
		AccessTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authMW := auth.Middleware{Service: authSvc}

	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}
	writeLimit := ratelimit.Handler{
		Limiter: ratelimit.SlidingWindow{Client: deps.Redis, Prefix: "garson:rl"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByWaiter,
			Window: time.Minute,
			Max:    cfg.RateLimitBurst,
		},
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limiter") },
	}
	ipLimiter := limiterstdlib.NewMiddleware(limiter.New(deps.LimiterStore, limiter.Rate{
		Period: time.Minute,
		Limit:  int64(cfg.RateLimitRPM),
	}))

	httpMetrics := obs.NewHTTPMetrics("garson", obs.ParseBucketsCSV(cfg.MetricsBuckets), registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.IsProduction(), HSTSMaxAge: 31536000}.Middleware)
	r.Use(security.BodyLimit{Max: 1 << 20}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(ipLimiter.Handler)

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if !cfg.IsProduction() {
		r.Mount("/debug/pprof", pprofMux())
	}

	healthHandler := health.Handler{Checker: health.Probes{Pool: pool, Redis: redisClient}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		auth.Handlers{Service: authSvc}.Mount(v)

		v.Group(func(protected chi.Router) {
			protected.Use(authMW.RequireAuth)

			catalog.Handlers{Service: catalogSvc}.Mount(protected)
			waitercall.Handlers{Service: callSvc}.Mount(protected)

			protected.Group(func(admin chi.Router) {
				admin.Use(authMW.RequireRole(auth.RoleManager))
				auth.AdminHandlers{Waiters: st}.Mount(admin)
			})

			protected.Group(func(writes chi.Router) {
				writes.Use(writeLimit.Middleware)
				order.Handlers{Service: orderSvc, Validate: deps.Validator}.Mount(writes)

				writes.Group(func(bills chi.Router) {
					bills.Use(idem.Middleware)
					billing.Handlers{Service: billingSvc}.Mount(bills)
				})
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server shutdown complete")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func migrationsSource() string {
	if src, ok := os.LookupEnv("MIGRATIONS_SOURCE"); ok && strings.TrimSpace(src) != "" {
		return src
	}
	return "file://migrations"
}

func pprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}
