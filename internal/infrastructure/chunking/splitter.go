package chunking

import (
	"strings"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// Separator hierarchy tuned for legal documents: paragraph, line, sentence,
// clause, word, then character as a last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

type Splitter struct {
	ChunkSize  int
	Overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Chunk splits text into overlapping chunks and attributes each chunk to a
// page by locating its start offset within cumulative page lengths. Pure and
// deterministic for identical input and configuration.
func (s *Splitter) Chunk(text string, pages []string, metadata map[string]any) []domain.TextChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := s.split(text, s.separators)

	chunks := make([]domain.TextChunk, 0, len(pieces))
	searchFrom := 0
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}

		start := strings.Index(text[searchFrom:], trimmed)
		end := -1
		if start >= 0 {
			start += searchFrom
			end = start + len(trimmed)
			// Overlapping chunks start before the previous chunk ends.
			searchFrom = start + 1
		}

		chunks = append(chunks, domain.TextChunk{
			ChunkIndex: len(chunks),
			Text:       trimmed,
			Page:       estimatePage(start, pages),
			StartChar:  start,
			EndChar:    end,
			Metadata:   metadata,
		})
	}
	return chunks
}

// split recursively breaks text on the first separator present, merging the
// resulting parts back into chunks bounded by ChunkSize with Overlap carried
// between consecutive chunks.
func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var deeper []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			deeper = separators[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		return s.hardSplit(text)
	}
	for _, part := range strings.SplitAfter(text, sep) {
		if part != "" {
			parts = append(parts, part)
		}
	}

	var out []string
	var pending []string
	for _, part := range parts {
		if len(part) <= s.ChunkSize {
			pending = append(pending, part)
			continue
		}
		out = append(out, s.merge(pending)...)
		pending = nil
		if len(deeper) == 0 {
			out = append(out, s.hardSplit(part)...)
		} else {
			out = append(out, s.split(part, deeper)...)
		}
	}
	return append(out, s.merge(pending)...)
}

func (s *Splitter) merge(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}

	var chunks []string
	var window []string
	windowLen := 0
	for _, part := range parts {
		if windowLen+len(part) > s.ChunkSize && windowLen > 0 {
			chunks = append(chunks, strings.Join(window, ""))
			// Shrink the window to at most Overlap characters so the next
			// chunk shares a tail with this one.
			for windowLen > s.Overlap || (windowLen+len(part) > s.ChunkSize && windowLen > 0) {
				windowLen -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, part)
		windowLen += len(part)
	}
	if windowLen > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// hardSplit cuts by runes when no separator applies, still honoring overlap.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// estimatePage maps a chunk's start offset onto cumulative page lengths.
// Returns 0 when the offset or pages are unknown; this is approximate when
// page boundaries are not byte-exact.
func estimatePage(start int, pages []string) int {
	if start < 0 || len(pages) == 0 {
		return 0
	}
	cumulative := 0
	for i, page := range pages {
		cumulative += len(page)
		if start < cumulative {
			return i + 1
		}
	}
	return len(pages)
}
