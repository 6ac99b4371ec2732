package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/craftmart/storefront/internal/auth"
	"github.com/craftmart/storefront/internal/cart"
	"github.com/craftmart/storefront/internal/catalog"
	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/contact"
	"github.com/craftmart/storefront/internal/health"
	"github.com/craftmart/storefront/internal/insights"
	"github.com/craftmart/storefront/internal/newsletter"
	"github.com/craftmart/storefront/internal/obs"
	"github.com/craftmart/storefront/internal/order"
	"github.com/craftmart/storefront/internal/promo"
	"github.com/craftmart/storefront/internal/review"
	"github.com/craftmart/storefront/internal/security"
	"github.com/craftmart/storefront/internal/store"
	"github.com/craftmart/storefront/internal/user"
)

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "storefront-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "storefront-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisOpts.Addr, Password: redisOpts.Password, DB: redisOpts.DB})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close asynq client")
		}
	}()

	keys, err := auth.NewJWKSProvider(context.Background(), cfg.AuthJWKSURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise jwks provider")
	}
	verifier := &auth.Verifier{
		Issuer:    cfg.AuthIssuer,
		Audience:  cfg.AuthAudience,
		ClockSkew: 30 * time.Second,
		Keys:      keys,
	}
	authMiddleware := auth.Middleware{Verifier: verifier}

	validate := validator.New()
	st := store.New(pool)
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	catalogSvc := &catalog.Service{Q: st, Cache: catalog.NewCache(redisClient, cfg.CatalogCacheTTL)}
	catalogHandler := &catalog.Handler{Service: catalogSvc, Validate: validate}

	resolver := &promo.Resolver{Q: st}
	promoHandler := &promo.Handler{Store: st, Validate: validate}

	cartSvc := &cart.Service{Q: st, Resolver: resolver, TaxBps: cfg.TaxRateBps}
	cartHandler := &cart.Handler{Service: cartSvc}

	orderSvc := &order.Service{
		Q:        st,
		Queue:    order.AsynqEnqueuer{Client: asynqClient},
		Resolver: resolver,
		TaxBps:   cfg.TaxRateBps,
		Log:      logger,
	}
	orderHandler := &order.Handler{Service: orderSvc}

	limiterStore, err := limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "ratelimit"})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise limiter store")
	}
	insightsLimiter := limiter.New(limiterStore, limiter.Rate{
		Period: time.Minute,
		Limit:  int64(cfg.InsightsRatePerMin),
	})
	insightsSvc := &insights.Service{Q: st, Cache: insights.NewCache(redisClient, cfg.InsightsCacheTTL)}
	insightsHandler := &insights.Handler{Service: insightsSvc, Limit: insights.RateLimit{Limiter: insightsLimiter}}

	reviewHandler := &review.Handler{Service: &review.Service{Q: st}}
	userHandler := &user.Handler{Service: &user.Service{Q: st}, Validate: validate}
	newsletterHandler := &newsletter.Handler{
		Service:  &newsletter.Service{Q: st, Queue: newsletter.AsynqEnqueuer{Client: asynqClient}},
		Validate: validate,
	}
	contactHandler := &contact.Handler{Email: common.NopEmailSender{}, To: cfg.ContactEmail, Validate: validate}

	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: 1 << 20}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := &health.Handler{
		DB:      health.PingFunc(pool.Ping),
		Redis:   health.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		Timeout: 2 * time.Second,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{id}", catalogHandler.ProductDetail)
		v.Get("/products/{id}/reviews", reviewHandler.List)
		v.Post("/newsletter/subscribe", newsletterHandler.Subscribe)
		v.Post("/contact", contactHandler.Submit)

		v.Group(func(authed chi.Router) {
			authed.Use(authMiddleware.RequireAuth)

			authed.Get("/me", userHandler.Me)
			authed.Get("/me/addresses", userHandler.Addresses)
			authed.Post("/me/addresses", userHandler.AddAddress)

			authed.Get("/cart", cartHandler.Get)
			authed.Post("/cart", cartHandler.Set)
			authed.Get("/cart/quote", cartHandler.Quote)

			authed.With(idem.Middleware).Post("/orders", orderHandler.Create)
			authed.Get("/orders", orderHandler.ListMine)

			authed.With(idem.Middleware).Post("/reviews", reviewHandler.Add)
			authed.Get("/reviews/check", reviewHandler.Check)

			authed.Post("/insights/search", insightsHandler.Search())
			authed.Get("/insights/recommendations", insightsHandler.Recommendations())
		})

		v.Route("/seller", func(s chi.Router) {
			s.Use(authMiddleware.RequireSeller)
			s.Get("/products", catalogHandler.SellerProducts)
			s.Post("/products", catalogHandler.CreateProduct)
			s.Put("/products/{id}", catalogHandler.UpdateProduct)
			s.Delete("/products/{id}", catalogHandler.DeleteProduct)

			s.Get("/orders", orderHandler.SellerList)
			s.Put("/orders/{id}/status", orderHandler.UpdateStatus)

			s.Post("/newsletter/send", newsletterHandler.Send)
			s.Get("/insights/demand-forecast", insightsHandler.DemandForecast())
		})

		v.Route("/admin/promos", func(a chi.Router) {
			a.Use(authMiddleware.RequireSeller)
			a.Post("/", promoHandler.Create)
			a.Get("/", promoHandler.List)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
