package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

// IngestUseCase accepts an upload, persists the source file and metadata,
// and hands processing off to the worker via the queue. The upload itself
// stays fast, everything expensive happens asynchronously.
type IngestUseCase struct {
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	logger    *slog.Logger
	now       func() time.Time
}

func NewIngestUseCase(
	documents ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		documents: documents,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *IngestUseCase) Upload(ctx context.Context, tenantID, title, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if tenantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("tenant id is required"))
	}
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("request body is empty"))
	}

	safeName := sanitizeFilename(filename)
	if title == "" {
		title = strings.TrimSuffix(safeName, path.Ext(safeName))
	}

	now := uc.now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Title:       title,
		Filename:    safeName,
		MimeType:    mimeType,
		StoragePath: fmt.Sprintf("%s/%s/%s", tenantID, now.Format("2006/01/02"), safeName),
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.storage.Save(ctx, doc.StoragePath, body); err != nil {
		return nil, fmt.Errorf("store document file: %w", err)
	}
	if err := uc.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID, tenantID); err != nil {
		// The file and record exist, the worker can still be triggered by a
		// republish, so surface the document with a warning instead of failing.
		uc.logger.Warn("failed to publish ingestion event",
			slog.String("document_id", doc.ID),
			slog.String("error", err.Error()),
		)
	}

	uc.logger.Info("document uploaded",
		slog.String("document_id", doc.ID),
		slog.String("tenant_id", tenantID),
		slog.String("filename", safeName),
	)

	return doc, nil
}

// sanitizeFilename strips directory components and characters that would
// be unsafe in a storage key.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || b.String() == "." || b.String() == ".." {
		return "document"
	}
	return b.String()
}
