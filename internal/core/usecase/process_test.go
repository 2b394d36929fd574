package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

type fakeExtractor struct {
	text  string
	pages []string
	err   error
}

func (f *fakeExtractor) Extract(context.Context, *domain.Document) (string, []string, error) {
	return f.text, f.pages, f.err
}

type fakeChunker struct {
	chunks []domain.TextChunk
}

func (f *fakeChunker) Chunk(_ string, _ []string, _ map[string]any) []domain.TextChunk {
	return f.chunks
}

type recordingVectorStore struct {
	fakeVectorStore
	inserted [][]domain.TextChunk
}

func (r *recordingVectorStore) BulkInsert(_ context.Context, _ string, chunks []domain.TextChunk, _ [][]float32) error {
	r.inserted = append(r.inserted, chunks)
	return nil
}

func newProcessForTest(repo *fakeDocumentRepo, extractor *fakeExtractor, chunker *fakeChunker, vectors *recordingVectorStore, cache *fakeResponseCache) *ProcessUseCase {
	return NewProcessUseCase(
		repo, extractor, chunker,
		&fakeEmbedder{queryVector: []float32{0.1, 0.2}},
		vectors, cache, discardLogger(),
	)
}

func TestProcessByIDSkipsAlreadyIndexedDocument(t *testing.T) {
	repo := &fakeDocumentRepo{docs: map[string]*domain.Document{"doc-1": readyDocument("doc-1")}}
	uc := newProcessForTest(repo, &fakeExtractor{}, &fakeChunker{}, &recordingVectorStore{}, &fakeResponseCache{})

	if err := uc.ProcessByID(context.Background(), "doc-1", "tenant-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusUpdates) != 0 {
		t.Fatalf("ready document should not transition, got %v", repo.statusUpdates)
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	doc := readyDocument("doc-1")
	doc.Status = domain.StatusUploaded
	repo := &fakeDocumentRepo{docs: map[string]*domain.Document{"doc-1": doc}}
	uc := newProcessForTest(repo, &fakeExtractor{err: fmt.Errorf("corrupt file")}, &fakeChunker{}, &recordingVectorStore{}, &fakeResponseCache{})

	err := uc.ProcessByID(context.Background(), "doc-1", "tenant-1")
	if err == nil {
		t.Fatalf("expected error")
	}

	want := []domain.DocumentStatus{domain.StatusProcessing, domain.StatusFailed}
	if len(repo.statusUpdates) != 2 || repo.statusUpdates[0] != want[0] || repo.statusUpdates[1] != want[1] {
		t.Fatalf("status transitions = %v, want %v", repo.statusUpdates, want)
	}
	if !strings.Contains(repo.statusErrors[1], "corrupt file") {
		t.Fatalf("failure message = %q, want extract error recorded", repo.statusErrors[1])
	}
}

func TestProcessByIDIndexesAndInvalidatesCache(t *testing.T) {
	doc := readyDocument("doc-1")
	doc.Status = domain.StatusUploaded
	repo := &fakeDocumentRepo{docs: map[string]*domain.Document{"doc-1": doc}}
	extractor := &fakeExtractor{text: "page one\fpage two", pages: []string{"page one", "page two"}}
	chunker := &fakeChunker{chunks: []domain.TextChunk{
		{ChunkIndex: 0, Text: "page one"},
		{ChunkIndex: 1, Text: "page two"},
	}}
	vectors := &recordingVectorStore{}
	cache := &fakeResponseCache{}
	uc := newProcessForTest(repo, extractor, chunker, vectors, cache)

	if err := uc.ProcessByID(context.Background(), "doc-1", "tenant-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	want := []domain.DocumentStatus{domain.StatusProcessing, domain.StatusReady}
	if len(repo.statusUpdates) != 2 || repo.statusUpdates[0] != want[0] || repo.statusUpdates[1] != want[1] {
		t.Fatalf("status transitions = %v, want %v", repo.statusUpdates, want)
	}
	if len(repo.savedChunks) != 2 {
		t.Fatalf("saved chunks = %d, want 2", len(repo.savedChunks))
	}
	for _, chunk := range repo.savedChunks {
		if chunk.DocumentID != "doc-1" {
			t.Fatalf("chunk missing document id: %+v", chunk)
		}
	}
	if len(vectors.inserted) != 1 || len(vectors.inserted[0]) != 2 {
		t.Fatalf("vector inserts = %+v, want one batch of 2", vectors.inserted)
	}
	if repo.indexedPages != 2 || repo.indexedChunks != 2 {
		t.Fatalf("index stats = (%d pages, %d chunks), want (2, 2)", repo.indexedPages, repo.indexedChunks)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "doc-1" {
		t.Fatalf("cache invalidations = %v, want [doc-1]", cache.invalidated)
	}
}

func TestProcessByIDFailsOnEmptyText(t *testing.T) {
	doc := readyDocument("doc-1")
	doc.Status = domain.StatusUploaded
	repo := &fakeDocumentRepo{docs: map[string]*domain.Document{"doc-1": doc}}
	uc := newProcessForTest(repo, &fakeExtractor{text: ""}, &fakeChunker{}, &recordingVectorStore{}, &fakeResponseCache{})

	if err := uc.ProcessByID(context.Background(), "doc-1", "tenant-1"); err == nil {
		t.Fatalf("expected error for empty extraction")
	}
	if repo.statusUpdates[len(repo.statusUpdates)-1] != domain.StatusFailed {
		t.Fatalf("final status = %v, want failed", repo.statusUpdates)
	}
}
