package ports

import (
	"context"
	"io"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, tenantID, title, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID, tenantID string) error
}

// RAGQueryRequest carries one retrieval-augmented query.
type RAGQueryRequest struct {
	Query               string
	TenantID            string
	Plan                string
	DocumentIDs         []string
	MaxResults          int
	SimilarityThreshold float64
	MaxContextLength    int
}

// RAGQueryService is the inbound contract for retrieval-augmented answers.
type RAGQueryService interface {
	Query(ctx context.Context, req RAGQueryRequest) (*domain.RAGResponse, error)
}

// DocumentAnalyzer runs playbook compliance analysis and risk assessment.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, documentID, tenantID, playbookID string) (*domain.AnalysisResult, error)
	CreateRiskAssessment(ctx context.Context, result *domain.AnalysisResult, tenantID string) (*domain.RiskAssessment, error)
}

// DocumentComparer diffs two documents at text and clause granularity.
type DocumentComparer interface {
	CompareDocuments(ctx context.Context, documentAID, documentBID, tenantID, userID string) (*domain.ComparisonResult, error)
}

// DocumentReader is the inbound read model for document metadata.
type DocumentReader interface {
	GetByID(ctx context.Context, id, tenantID string) (*domain.Document, error)
}
