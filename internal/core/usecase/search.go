package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

const (
	defaultSearchLimit      = 10
	defaultSimilarityFloor  = 0.7
	defaultContextSize      = 2
	defaultMMRLambda        = 0.7
	mmrCandidateMultiplier  = 2
)

type SearchParams struct {
	Query               string
	Filter              domain.SearchFilter
	Limit               int
	SimilarityThreshold float64
	IncludeContext      bool
	ContextSize         int
}

// SearchUseCase retrieves candidate chunks, diversifies them with MMR and
// attaches surrounding context chunks.
type SearchUseCase struct {
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	mmrLambda float64
}

func NewSearchUseCase(embedder ports.Embedder, vectorDB ports.VectorStore, mmrLambda float64) *SearchUseCase {
	if mmrLambda <= 0 || mmrLambda > 1 {
		mmrLambda = defaultMMRLambda
	}
	return &SearchUseCase{
		embedder:  embedder,
		vectorDB:  vectorDB,
		mmrLambda: mmrLambda,
	}
}

// Search returns up to p.Limit results above the similarity threshold. An
// empty result set is a valid outcome, not an error.
func (uc *SearchUseCase) Search(ctx context.Context, p SearchParams) ([]domain.SearchResult, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "semantic search", fmt.Errorf("empty query"))
	}
	if p.Limit <= 0 {
		p.Limit = defaultSearchLimit
	}
	if p.SimilarityThreshold <= 0 {
		p.SimilarityThreshold = defaultSimilarityFloor
	}
	if p.ContextSize <= 0 {
		p.ContextSize = defaultContextSize
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, p.Query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingProvider, "embed query", err)
	}

	// Over-fetch so MMR has a larger pool to diversify from.
	candidates, err := uc.vectorDB.SimilaritySearch(
		ctx, queryVector, p.Filter, p.Limit*mmrCandidateMultiplier, p.SimilarityThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := rerankMMR(candidates, queryVector, p.Limit, uc.mmrLambda)

	if p.IncludeContext {
		for i := range results {
			nearby, err := uc.vectorDB.GetNearbyChunks(
				ctx,
				results[i].Chunk.DocumentID,
				p.Filter.TenantID,
				results[i].Chunk.ChunkIndex,
				p.ContextSize,
			)
			if err != nil {
				return nil, fmt.Errorf("fetch context chunks: %w", err)
			}
			results[i].ContextChunks = nearby
		}
	}

	return results, nil
}
