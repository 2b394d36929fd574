package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

// embedBatchSize bounds how many chunk texts go to the embedder per call.
const embedBatchSize = 100

// ProcessUseCase is the worker-side indexing pipeline: extract, chunk,
// embed, index. State transitions are persisted at every stage so a crash
// leaves the document in an honest status.
type ProcessUseCase struct {
	documents ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectors   ports.VectorStore
	cache     ports.ResponseCache
	logger    *slog.Logger
}

func NewProcessUseCase(
	documents ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectors ports.VectorStore,
	cache ports.ResponseCache,
	logger *slog.Logger,
) *ProcessUseCase {
	return &ProcessUseCase{
		documents: documents,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectors:   vectors,
		cache:     cache,
		logger:    logger,
	}
}

func (uc *ProcessUseCase) ProcessByID(ctx context.Context, documentID, tenantID string) error {
	started := time.Now()

	doc, err := uc.documents.GetByID(ctx, documentID, tenantID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	if doc.Status == domain.StatusReady {
		uc.logger.Info("document already indexed, skipping",
			slog.String("document_id", documentID))
		return nil
	}

	if err := uc.documents.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if err := uc.process(ctx, doc); err != nil {
		if updateErr := uc.documents.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); updateErr != nil {
			uc.logger.Error("failed to record processing failure",
				slog.String("document_id", documentID),
				slog.String("error", updateErr.Error()),
			)
		}
		return err
	}

	if err := uc.documents.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}

	// Any cached answers that cited this document are stale now.
	if err := uc.cache.InvalidateDocument(ctx, tenantID, documentID); err != nil {
		uc.logger.Warn("cache invalidation failed",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()),
		)
	}

	uc.logger.Info("document indexed",
		slog.String("document_id", documentID),
		slog.String("tenant_id", tenantID),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (uc *ProcessUseCase) process(ctx context.Context, doc *domain.Document) error {
	text, pages, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return fmt.Errorf("document %s produced no text", doc.ID)
	}

	chunks := uc.chunker.Chunk(text, pages, map[string]any{
		"document_id": doc.ID,
		"title":       doc.Title,
	})
	if len(chunks) == 0 {
		return fmt.Errorf("document %s produced no chunks", doc.ID)
	}
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
	}

	if err := uc.documents.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return domain.WrapError(domain.ErrEmbeddingProvider, "embed chunks", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		if err := uc.vectors.BulkInsert(ctx, doc.TenantID, batch, vectors); err != nil {
			return fmt.Errorf("index chunk vectors: %w", err)
		}
	}

	if err := uc.documents.UpdateIndexStats(ctx, doc.ID, len(pages), len(chunks)); err != nil {
		return fmt.Errorf("persist index stats: %w", err)
	}
	return nil
}
