package usecase

import (
	"math"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// rerankMMR applies Maximal Marginal Relevance over a candidate pool sorted
// by descending similarity. Each step selects the candidate maximizing
// lambda*relevance - (1-lambda)*maxSimilarityToSelected, so near-duplicate
// chunks are penalized once one of them is in. Pools no larger than limit
// are returned unchanged.
func rerankMMR(candidates []domain.SearchResult, queryVector []float32, limit int, lambda float64) []domain.SearchResult {
	if len(candidates) <= limit {
		return candidates
	}

	selected := make([]domain.SearchResult, 0, limit)
	remaining := make([]domain.SearchResult, len(candidates))
	copy(remaining, candidates)

	// Highest-similarity candidate seeds the selection.
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)

		for i, candidate := range remaining {
			relevance := candidate.SimilarityScore
			if len(candidate.Embedding) > 0 {
				relevance = cosineSimilarity(queryVector, candidate.Embedding)
			}

			maxToSelected := 0.0
			for _, chosen := range selected {
				if len(candidate.Embedding) == 0 || len(chosen.Embedding) == 0 {
					continue
				}
				if sim := cosineSimilarity(candidate.Embedding, chosen.Embedding); sim > maxToSelected {
					maxToSelected = sim
				}
			}

			score := lambda*relevance - (1-lambda)*maxToSelected
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
