package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

func embedResponse(vectors map[int][]float32) map[string]any {
	data := make([]map[string]any, 0, len(vectors))
	for idx, vec := range vectors {
		data = append(data, map[string]any{"index": idx, "embedding": vec})
	}
	return map[string]any{"data": data}
}

func TestEmbedSendsAuthAndModel(t *testing.T) {
	var captured embedRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(embedResponse(map[int][]float32{
			0: {0.1, 0.2},
			1: {0.3, 0.4},
		}))
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "text-embedding-3-small", 2, 100)

	vectors, err := client.Embed(context.Background(), []string{"first clause", "second clause"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if authHeader != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", authHeader)
	}
	if captured.Model != "text-embedding-3-small" {
		t.Errorf("expected model text-embedding-3-small, got %q", captured.Model)
	}
	if len(captured.Input) != 2 || captured.Input[0] != "first clause" {
		t.Errorf("unexpected input batch: %v", captured.Input)
	}
}

func TestEmbedPlacesVectorsByReturnedIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Out of order on purpose.
		fmt.Fprint(w, `{"data":[{"index":1,"embedding":[2.0]},{"index":0,"embedding":[1.0]}]}`)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "", 1, 100)

	vectors, err := client.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if vectors[0][0] != 1.0 || vectors[1][0] != 2.0 {
		t.Errorf("vectors not placed by index: %v", vectors)
	}
}

func TestEmbedSplitsLargeInputsIntoBatches(t *testing.T) {
	var calls int32
	var batchSizes []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		batchSizes = append(batchSizes, len(req.Input))

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"index": i, "embedding": []float32{float32(i)}}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "", 1, 1000)

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	vectors, err := client.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 150 {
		t.Fatalf("expected 150 vectors, got %d", len(vectors))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 batches, got %d", got)
	}
	if batchSizes[0] != 100 || batchSizes[1] != 50 {
		t.Errorf("unexpected batch sizes: %v", batchSizes)
	}
}

func TestEmbedCountMismatchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[1.0]}]}`)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "", 1, 100)

	if _, err := client.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestEmbedErrorStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer server.Close()

	client := New(server.URL, "bad-key", "", 1, 100)

	_, err := client.Embed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected body in error, got: %v", err)
	}
}

func TestEmbedEmptyInputIsNoop(t *testing.T) {
	client := New("http://unused.invalid", "sk-test", "", 1, 100)

	vectors, err := client.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil vectors, got %v", vectors)
	}
}

func TestEmbedQueryReturnsSingleVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0.5,0.6]}]}`)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "", 2, 100)

	vec, err := client.EmbedQuery(context.Background(), "what are the payment terms")
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestDefaultsApplied(t *testing.T) {
	client := New("", "sk-test", "", 0, 0)

	if client.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL, got %q", client.baseURL)
	}
	if client.ModelName() != defaultModel {
		t.Errorf("expected default model, got %q", client.ModelName())
	}
	if client.Dimension() != defaultDimension {
		t.Errorf("expected default dimension, got %d", client.Dimension())
	}
}
