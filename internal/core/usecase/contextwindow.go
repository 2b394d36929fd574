package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

const (
	truncationMarker  = "\n[... truncated ...]"
	citationExcerptMax = 200
)

// assembleContext concatenates per-document sections in result relevance
// order. A section that would overflow maxLength is dropped, except the
// very first, which is truncated with an explicit marker so the context is
// never silently empty.
func assembleContext(results []domain.SearchResult, maxLength int) string {
	var parts []string
	currentLength := 0

	for _, result := range results {
		section := buildSection(result)

		if currentLength+len(section) > maxLength {
			if currentLength == 0 {
				remaining := maxLength - len(truncationMarker)
				if remaining > 0 && remaining < len(section) {
					section = section[:remaining] + truncationMarker
				}
				parts = append(parts, section)
			}
			break
		}

		parts = append(parts, section)
		currentLength += len(section)
	}

	return strings.Join(parts, "\n")
}

func buildSection(result domain.SearchResult) string {
	chunks := result.ContextChunks
	if len(chunks) == 0 {
		chunks = []domain.TextChunk{result.Chunk}
	} else {
		sorted := make([]domain.TextChunk, len(chunks))
		copy(sorted, chunks)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ChunkIndex < sorted[j].ChunkIndex })
		chunks = sorted
	}

	title := result.DocumentTitle
	if title == "" {
		title = "Unknown Document"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n--- From: %s ---\n", title)
	for _, chunk := range chunks {
		b.WriteString(strings.TrimSpace(chunk.Text))
		if chunk.Page > 0 {
			fmt.Fprintf(&b, " (Page %d)", chunk.Page)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// extractCitations produces one citation per search result, most relevant
// first, with display excerpts capped for the UI.
func extractCitations(results []domain.SearchResult) []domain.Citation {
	citations := make([]domain.Citation, 0, len(results))
	for _, result := range results {
		excerpt := result.Chunk.Text
		if len(excerpt) > citationExcerptMax {
			excerpt = excerpt[:citationExcerptMax] + "..."
		}
		citations = append(citations, domain.Citation{
			DocumentID:     result.DocumentID,
			DocumentTitle:  result.DocumentTitle,
			Page:           result.Chunk.Page,
			ChunkID:        result.Chunk.ID,
			Excerpt:        excerpt,
			RelevanceScore: result.SimilarityScore,
		})
	}

	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].RelevanceScore > citations[j].RelevanceScore
	})
	return citations
}
