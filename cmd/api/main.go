package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/account"
	"github.com/nikhilbhutani/pdfchat/internal/admission"
	"github.com/nikhilbhutani/pdfchat/internal/api"
	"github.com/nikhilbhutani/pdfchat/internal/api/handlers"
	"github.com/nikhilbhutani/pdfchat/internal/api/middleware"
	"github.com/nikhilbhutani/pdfchat/internal/auth"
	"github.com/nikhilbhutani/pdfchat/internal/cache"
	"github.com/nikhilbhutani/pdfchat/internal/config"
	"github.com/nikhilbhutani/pdfchat/internal/conversation"
	"github.com/nikhilbhutani/pdfchat/internal/database"
	"github.com/nikhilbhutani/pdfchat/internal/document"
	"github.com/nikhilbhutani/pdfchat/internal/embedding"
	"github.com/nikhilbhutani/pdfchat/internal/guardrails"
	"github.com/nikhilbhutani/pdfchat/internal/ingest"
	"github.com/nikhilbhutani/pdfchat/internal/llm"
	"github.com/nikhilbhutani/pdfchat/internal/plan"
	"github.com/nikhilbhutani/pdfchat/internal/queue"
	"github.com/nikhilbhutani/pdfchat/internal/rag"
	"github.com/nikhilbhutani/pdfchat/internal/storage"
	"github.com/nikhilbhutani/pdfchat/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	rdb := cache.NewClient(cfg.Redis)
	defer rdb.Close()
	kv := cache.NewCache(rdb, "pdfchat:")
	if err := kv.Ping(ctx); err != nil {
		slog.Warn("redis unavailable at start-up", "error", err)
	}

	s3, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		slog.Error("object store unavailable", "error", err)
		os.Exit(1)
	}
	gateway := storage.NewGateway(s3, cache.NewLedger(kv), storage.GatewayConfig{
		UploadTTL:   cfg.Storage.UploadTTL,
		DownloadTTL: cfg.Storage.DownloadTTL,
		LedgerTTL:   cfg.Storage.LedgerTTL,
	})

	accounts := account.NewService(account.NewPGRepo(db))
	planTable := plan.Table(cfg.Billing.ProPriceID)
	plans := plan.NewResolver(accounts, planTable)

	llmGW := llm.NewGateway(cfg.LLM)
	embedder := embedding.NewService(llmGW)
	vectors := vectorstore.NewPgVectorStore(db)

	docs := document.NewService(document.NewPGRepo(db), gateway, plans, vectors, cache.NewStatusCache(kv))

	switch cfg.Ingest.Mode {
	case "inline":
		pipeline := ingest.NewPipeline(docs, gateway, ingest.NewHTTPFetcher(plan.MaxFileBytes(planTable)), ingest.PDFExtractor{},
			plans, rag.NewIndexer(embedder, vectors), ingest.Options{
				RetryAttempts:  cfg.Ingest.RetryAttempts,
				RetryBaseDelay: cfg.Ingest.RetryBaseDelay,
				CredentialTTL:  cfg.Storage.DownloadTTL,
			})
		inline, err := ingest.NewInlineDispatcher(pipeline, cfg.Ingest.PoolSize, 10*time.Minute)
		if err != nil {
			slog.Error("create ingest pool", "error", err)
			os.Exit(1)
		}
		defer inline.Close()
		docs.SetDispatcher(inline)
	default:
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		docs.SetDispatcher(qc)
	}
	slog.Info("ingest dispatcher ready", "mode", cfg.Ingest.Mode)

	generator := rag.NewGenerator(rag.NewRetriever(embedder, vectors), llmGW)
	convs := conversation.NewService(conversation.NewPGRepo(db), docs, generator).
		WithScreener(guardrails.NewPromptInjectionDetector(0))

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	go limiter.Run(stop)

	handler := api.NewRouter(api.Deps{
		Authenticate: auth.NewJWTMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Authenticate,
		RateLimiter:  limiter,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Health:       handlers.NewHealthHandler(map[string]handlers.Pinger{"database": db, "redis": kv}),
		Documents:    handlers.NewDocumentHandler(docs),
		Uploads:      handlers.NewUploadHandler(admission.NewController(), plans, gateway, docs),
		Messages:     handlers.NewMessageHandler(convs),
		Accounts:     handlers.NewAccountHandler(accounts, plans),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	close(stop)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
