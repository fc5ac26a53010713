package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/pdfchat/internal/account"
	"github.com/nikhilbhutani/pdfchat/internal/cache"
	"github.com/nikhilbhutani/pdfchat/internal/config"
	"github.com/nikhilbhutani/pdfchat/internal/database"
	"github.com/nikhilbhutani/pdfchat/internal/document"
	"github.com/nikhilbhutani/pdfchat/internal/embedding"
	"github.com/nikhilbhutani/pdfchat/internal/ingest"
	"github.com/nikhilbhutani/pdfchat/internal/llm"
	"github.com/nikhilbhutani/pdfchat/internal/plan"
	"github.com/nikhilbhutani/pdfchat/internal/queue"
	"github.com/nikhilbhutani/pdfchat/internal/queue/workers"
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

	rdb := cache.NewClient(cfg.Redis)
	defer rdb.Close()
	kv := cache.NewCache(rdb, "pdfchat:")

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

	planTable := plan.Table(cfg.Billing.ProPriceID)
	plans := plan.NewResolver(account.NewService(account.NewPGRepo(db)), planTable)

	vectors := vectorstore.NewPgVectorStore(db)
	indexer := rag.NewIndexer(embedding.NewService(llm.NewGateway(cfg.LLM)), vectors)
	docs := document.NewService(document.NewPGRepo(db), gateway, plans, vectors, cache.NewStatusCache(kv))

	pipeline := ingest.NewPipeline(docs, gateway, ingest.NewHTTPFetcher(plan.MaxFileBytes(planTable)), ingest.PDFExtractor{},
		plans, indexer, ingest.Options{
			RetryAttempts:  cfg.Ingest.RetryAttempts,
			RetryBaseDelay: cfg.Ingest.RetryBaseDelay,
			CredentialTTL:  cfg.Storage.DownloadTTL,
		})

	srv := queue.NewServer(cfg.Redis, cfg.Ingest.WorkerConcurrency)

	registry := queue.NewHandlersRegistry()
	documentWorker := workers.NewDocumentWorker(pipeline)
	registry.Register(queue.TypeDocumentProcess, asynq.HandlerFunc(documentWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Ingest.WorkerConcurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
