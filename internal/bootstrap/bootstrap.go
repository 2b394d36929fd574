// Package bootstrap wires configuration, infrastructure adapters and use
// cases into a runnable application graph shared by the api and worker
// binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clauseguard/clauseguard/internal/config"
	"github.com/clauseguard/clauseguard/internal/core/ports"
	"github.com/clauseguard/clauseguard/internal/core/usecase"
	rediscache "github.com/clauseguard/clauseguard/internal/infrastructure/cache/redis"
	"github.com/clauseguard/clauseguard/internal/infrastructure/chunking"
	ollamaembed "github.com/clauseguard/clauseguard/internal/infrastructure/embedding/ollama"
	openaiembed "github.com/clauseguard/clauseguard/internal/infrastructure/embedding/openai"
	"github.com/clauseguard/clauseguard/internal/infrastructure/extractor/plaintext"
	"github.com/clauseguard/clauseguard/internal/infrastructure/llm/anthropic"
	"github.com/clauseguard/clauseguard/internal/infrastructure/queue/nats"
	"github.com/clauseguard/clauseguard/internal/infrastructure/repository/postgres"
	"github.com/clauseguard/clauseguard/internal/infrastructure/resilience"
	"github.com/clauseguard/clauseguard/internal/infrastructure/storage/localfs"
	"github.com/clauseguard/clauseguard/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     *nats.Queue
	Documents ports.DocumentRepository

	IngestUC     ports.DocumentIngestor
	ProcessUC    ports.DocumentProcessor
	RAGUC        ports.RAGQueryService
	ComplianceUC ports.DocumentAnalyzer
	ComparisonUC ports.DocumentComparer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	playbooks := postgres.NewPlaybookStore(db)
	analyses := postgres.NewAnalysisStore(db)
	comparisons := postgres.NewComparisonStore(db)

	for name, ensure := range map[string]func(context.Context) error{
		"documents":   documents.EnsureSchema,
		"playbooks":   playbooks.EnsureSchema,
		"analyses":    analyses.EnsureSchema,
		"comparisons": comparisons.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			return nil, fmt.Errorf("ensure %s schema: %w", name, err)
		}
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	rdb, err := rediscache.NewClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	responseCache := rediscache.NewResponseCache(rdb)
	rateLimiter := rediscache.NewRateLimiter(rdb)
	usageTracker := rediscache.NewUsageTracker(rdb)

	var embedder ports.Embedder
	switch cfg.EmbeddingProvider {
	case "ollama":
		embedder = ollamaembed.New(cfg.OllamaURL, cfg.OllamaEmbedModel, cfg.OllamaDimension)
	default:
		embedder = openaiembed.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIDimension, cfg.OpenAIEmbedRPS)
	}

	generator := anthropic.New(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, executor)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extractor := plaintext.NewExtractor(storage)

	searchUC := usecase.NewSearchUseCase(embedder, vectorDB, cfg.RAGMMRLambda)
	ragUC := usecase.NewRAGUseCase(searchUC, generator, responseCache, rateLimiter, usageTracker, usecase.RAGConfig{
		ModelByPlan: map[string]string{
			"free":       cfg.ModelFree,
			"pro":        cfg.ModelPro,
			"enterprise": cfg.ModelEnterprise,
		},
		FallbackModel:    cfg.ModelFallback,
		MaxTokens:        cfg.RAGMaxTokens,
		Temperature:      cfg.RAGTemperature,
		QueriesPerWindow: cfg.RAGQueriesPerMinute,
	})

	scorer := usecase.NewRiskScorer(analyses)
	complianceUC := usecase.NewComplianceUseCase(documents, playbooks, analyses, scorer)
	comparisonUC := usecase.NewComparisonUseCase(documents, analyses, comparisons)
	ingestUC := usecase.NewIngestUseCase(documents, storage, queue, logger)
	processUC := usecase.NewProcessUseCase(documents, extractor, chunker, embedder, vectorDB, responseCache, logger)

	return &App{
		Config:    cfg,
		Queue:     queue,
		Documents: documents,

		IngestUC:     ingestUC,
		ProcessUC:    processUC,
		RAGUC:        ragUC,
		ComplianceUC: complianceUC,
		ComparisonUC: comparisonUC,

		closeFn: func() {
			queue.Close()
			_ = rdb.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
