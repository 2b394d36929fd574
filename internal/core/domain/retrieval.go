package domain

// SearchResult is a transient per-query hit. Similarity scores are cosine
// similarities in [0,1], higher is more relevant.
type SearchResult struct {
	Chunk           TextChunk   `json:"chunk"`
	SimilarityScore float64     `json:"similarity_score"`
	DocumentID      string      `json:"document_id"`
	DocumentTitle   string      `json:"document_title"`
	Embedding       []float32   `json:"-"`
	ContextChunks   []TextChunk `json:"context_chunks,omitempty"`
}

type Citation struct {
	DocumentID     string  `json:"document_id"`
	DocumentTitle  string  `json:"document_title"`
	Page           int     `json:"page,omitempty"`
	ChunkID        string  `json:"chunk_id"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevance_score"`
}

type RAGResponse struct {
	Answer         string     `json:"answer"`
	Citations      []Citation `json:"citations"`
	Confidence     float64    `json:"confidence"`
	ModelUsed      string     `json:"model_used"`
	ProcessingTime float64    `json:"processing_time"`
	Cached         bool       `json:"cached,omitempty"`
}

// SearchFilter scopes retrieval to a tenant and optionally to a document set.
type SearchFilter struct {
	TenantID    string
	DocumentIDs []string
}
