package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/config"
	dbRedis "github.com/kailas-cloud/docfinder/internal/db/redis"
	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	"github.com/kailas-cloud/docfinder/internal/ingest"
	logpkg "github.com/kailas-cloud/docfinder/internal/logger"
	"github.com/kailas-cloud/docfinder/internal/metrics"
	documentrepo "github.com/kailas-cloud/docfinder/internal/repository/document"
	"github.com/kailas-cloud/docfinder/internal/repository/summarycache"
	usagerepo "github.com/kailas-cloud/docfinder/internal/repository/usage"
	chiTransport "github.com/kailas-cloud/docfinder/internal/transport/chi"
	openaiChat "github.com/kailas-cloud/docfinder/internal/transport/openai"
	batchuc "github.com/kailas-cloud/docfinder/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/docfinder/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docfinder/internal/usecase/health"
	llmuc "github.com/kailas-cloud/docfinder/internal/usecase/llm"
	searchuc "github.com/kailas-cloud/docfinder/internal/usecase/search"
	usageuc "github.com/kailas-cloud/docfinder/internal/usecase/usage"
	"github.com/kailas-cloud/docfinder/internal/version"
)

func main() {
	// .env is optional; real environment variables win
	envFileErr := godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if envFileErr != nil && !errors.Is(envFileErr, os.ErrNotExist) {
		logger.Warn("Failed to read .env file", zap.Error(envFileErr))
	}

	logger.Info("Starting docfinder API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("auth", cfg.Auth.Enabled()),
		zap.Bool("llm", cfg.LLM.Enabled()),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterLLMMetrics()
	metrics.RegisterSearchMetrics()

	prefix := cfg.Storage.KeyPrefix
	docRepo := documentrepo.New(store, logger).WithKeyPrefix(prefix)
	usageStore := usagerepo.New(store, 0, 0).WithKeyPrefix(prefix)

	usageSvc := usageuc.New(usageStore, usageuc.Limits{
		Daily:   cfg.LLM.DailyTokenLimit,
		Monthly: cfg.LLM.MonthlyTokenLimit,
	}, logger)

	// Pass nil interfaces (not typed nil pointers) when the LLM is not configured.
	var (
		summarizer searchuc.Summarizer
		classifier documentuc.Classifier
		llmHealth  healthuc.LLMChecker
	)
	if cfg.LLM.Enabled() {
		client := openaiChat.NewClient(&openaiChat.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		completer := buildCompleter(client, store, cfg, usageSvc, logger)

		summarizer = llmuc.NewSummarizer(completer)
		if cfg.LLM.ClassifyOnIngest {
			classifier = llmuc.NewClassifier(completer)
		}
		llmHealth = client
		logger.Info("LLM provider configured",
			zap.String("model", client.Model()),
			zap.Bool("classify_on_ingest", cfg.LLM.ClassifyOnIngest),
			zap.Int64("daily_token_limit", cfg.LLM.DailyTokenLimit),
		)
	}

	searchSvc := searchuc.New(docRepo, engineConfigs(cfg.Search), summarizer, logger)
	docSvc := documentuc.New(docRepo, classifier, logger).
		WithPagination(cfg.HTTP.DefaultPageSize, cfg.HTTP.MaxPageSize)
	batchSvc := batchuc.New(docSvc).WithMaxBatchSize(cfg.HTTP.MaxBatchSize)
	healthSvc := healthuc.New(store, llmHealth)

	server := chiTransport.NewServer(searchSvc, docSvc, batchSvc, usageSvc, healthSvc, logger)
	if cfg.Search.RatePerSec > 0 {
		limiter := chiTransport.NewTenantRateLimiter(cfg.Search.RatePerSec, cfg.Search.Burst)
		server.WithSearchLimiter(limiter.Middleware)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.TenantAuthMiddleware(cfg.Auth.Tenants))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      withCORS(r, cfg.HTTP.CORSOrigins),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Ingest.WatchDir != "" {
		startIngest(runCtx, cfg.Ingest, docSvc, logger)
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCompleter assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// The quota check runs on cache hits too; they record zero tokens.
func buildCompleter(
	client *openaiChat.Client,
	store *dbRedis.Store,
	cfg config.Config,
	quota llmuc.QuotaGuard,
	logger *zap.Logger,
) domain.Completer {
	var completer domain.Completer = client
	if cfg.LLM.SummaryCacheTTLSec > 0 {
		completer = summarycache.New(client, store, client.Model(),
			time.Duration(cfg.LLM.SummaryCacheTTLSec)*time.Second,
			metrics.SummaryCacheTotal, logger,
		).WithKeyPrefix(cfg.Storage.KeyPrefix)
	}
	return llmuc.NewInstrumentedCompleter(completer, client.Model(), quota, logger)
}

// startIngest loads the watch directory once, then keeps it in sync in the background.
func startIngest(ctx context.Context, cfg config.IngestConfig, docs ingest.DocumentWriter, logger *zap.Logger) {
	col, err := collection.Parse(cfg.Collection)
	if err != nil {
		logger.Fatal("Invalid ingest collection", zap.Error(err))
	}

	// LLM usage of background ingestion is billed to the ingest tenant
	ctx = domain.ContextWithTenant(ctx, cfg.Tenant)
	w := ingest.New(cfg.WatchDir, cfg.Tenant, col, docs, logger)

	st, err := w.LoadAll(ctx)
	if err != nil {
		logger.Error("Initial ingest failed", zap.Error(err))
	}
	logger.Info("Initial ingest finished",
		zap.String("tenant", cfg.Tenant),
		zap.String("collection", string(col)),
		zap.Int("files", st.Files),
		zap.Int("upserted", st.Upserted),
		zap.Int("failed", st.Failed),
	)

	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Error("Ingest watcher stopped", zap.Error(err))
		}
	}()
}

// withCORS allows browser clients from origins. Empty origins disable CORS handling.
func withCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", chiTransport.TenantHeader},
		ExposedHeaders: []string{"X-Request-ID", chiTransport.LLMTokensHeader, "Location"},
	}).Handler(h)
}
