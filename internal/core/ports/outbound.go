package ports

import (
	"context"
	"io"
	"time"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// DocumentRepository persists document state and chunk text.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id, tenantID string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	UpdateIndexStats(ctx context.Context, id string, pageCount, chunkCount int) error
	SaveChunks(ctx context.Context, documentID string, chunks []domain.TextChunk) error
	GetChunks(ctx context.Context, documentID, tenantID string) ([]domain.TextChunk, error)
	GetFullText(ctx context.Context, documentID, tenantID string) (string, error)
}

// PlaybookStore reads tenant playbooks. GetDefault falls back to the
// built-in standard playbook when the tenant has none.
type PlaybookStore interface {
	GetByID(ctx context.Context, id, tenantID string) (*domain.Playbook, error)
	GetDefault(ctx context.Context, tenantID string) (*domain.Playbook, error)
}

// AnalysisStore persists analysis results and the clauses they matched.
type AnalysisStore interface {
	Create(ctx context.Context, result *domain.AnalysisResult, tenantID string) (string, error)
	SaveClauses(ctx context.Context, documentID, tenantID string, matches []domain.ClauseMatch) error
	GetClauses(ctx context.Context, documentID, tenantID string) ([]domain.Clause, error)
	ListByDocument(ctx context.Context, documentID, tenantID string, since time.Time) ([]domain.AnalysisRecord, error)
}

// ComparisonStore persists comparison results keyed by unordered pair.
type ComparisonStore interface {
	GetByPair(ctx context.Context, documentAID, documentBID, tenantID string) (*domain.ComparisonResult, error)
	Create(ctx context.Context, result *domain.ComparisonResult, tenantID, userID string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document processing events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID, tenantID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(ctx context.Context, documentID, tenantID string) error) error
}

// TextExtractor extracts plain text plus per-page texts from a stored
// document. The core assumes nothing about the extraction backend.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (text string, pages []string, err error)
}

// Chunker splits text into overlapping chunks with page attribution.
type Chunker interface {
	Chunk(text string, pages []string, metadata map[string]any) []domain.TextChunk
}

// Embedder builds fixed-dimension vectors for chunk and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelName() string
}

// VectorStore indexes chunk embeddings and performs cosine similarity search.
type VectorStore interface {
	BulkInsert(ctx context.Context, tenantID string, chunks []domain.TextChunk, vectors [][]float32) error
	SimilaritySearch(ctx context.Context, queryVector []float32, filter domain.SearchFilter, limit int, threshold float64) ([]domain.SearchResult, error)
	GetNearbyChunks(ctx context.Context, documentID, tenantID string, chunkIndex, contextSize int) ([]domain.TextChunk, error)
	DeleteDocument(ctx context.Context, documentID, tenantID string) error
}

// AnswerGenerator is the LLM call abstraction behind RAG answers.
type AnswerGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int, temperature float64) (string, error)
}

// ResponseCache caches RAG responses with a TTL and supports invalidation
// of all entries scoped to a document.
type ResponseCache interface {
	GetRAGResponse(ctx context.Context, key domain.SearchFilter, query string, threshold float64) (*domain.RAGResponse, bool)
	SetRAGResponse(ctx context.Context, key domain.SearchFilter, query string, threshold float64, resp *domain.RAGResponse) error
	InvalidateDocument(ctx context.Context, tenantID, documentID string) error
}

// RateLimiter enforces a sliding-window limit per tenant and action.
type RateLimiter interface {
	Check(ctx context.Context, tenantID, action string, limit int, window time.Duration) (allowed bool, remaining int, err error)
}

// UsageTracker accounts per-tenant metered usage.
type UsageTracker interface {
	Increment(ctx context.Context, tenantID, metric string, amount int) error
}
