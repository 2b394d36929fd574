// Package plaintext extracts text from UTF-8 documents. Page boundaries
// follow form-feed characters, a document without them is a single page.
package plaintext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, []string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return "", nil, fmt.Errorf("unsupported binary format: %s", doc.Filename)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", nil, nil
	}

	var pages []string
	if strings.Contains(text, "\f") {
		for _, page := range strings.Split(text, "\f") {
			pages = append(pages, strings.TrimSpace(page))
		}
	} else {
		pages = []string{text}
	}

	return strings.Join(pages, "\n"), pages, nil
}
