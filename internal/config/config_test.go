package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Errorf("expected default API port 8080, got %q", cfg.APIPort)
	}
	if cfg.QdrantCollection != "contract_chunks" {
		t.Errorf("unexpected default collection: %q", cfg.QdrantCollection)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("unexpected chunking defaults: %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RAGMMRLambda != 0.7 {
		t.Errorf("unexpected default MMR lambda: %v", cfg.RAGMMRLambda)
	}
	if cfg.EmbeddingProvider != "openai" {
		t.Errorf("unexpected default embedding provider: %q", cfg.EmbeddingProvider)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("RAG_QUERIES_PER_MINUTE", "5")
	t.Setenv("OPENAI_EMBED_RPS", "0.5")
	t.Setenv("MODEL_PRO", "claude-test-model")

	cfg := Load()

	if cfg.APIPort != "9999" {
		t.Errorf("expected API port override, got %q", cfg.APIPort)
	}
	if cfg.RAGQueriesPerMinute != 5 {
		t.Errorf("expected rate override 5, got %d", cfg.RAGQueriesPerMinute)
	}
	if cfg.OpenAIEmbedRPS != 0.5 {
		t.Errorf("expected rps override 0.5, got %v", cfg.OpenAIEmbedRPS)
	}
	if cfg.ModelPro != "claude-test-model" {
		t.Errorf("expected model override, got %q", cfg.ModelPro)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("RAG_TEMPERATURE", "warm")

	cfg := Load()

	if cfg.ChunkSize != 1000 {
		t.Errorf("expected fallback chunk size, got %d", cfg.ChunkSize)
	}
	if cfg.RAGTemperature != 0.1 {
		t.Errorf("expected fallback temperature, got %v", cfg.RAGTemperature)
	}
}
