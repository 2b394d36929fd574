// Package httpadapter is the thin HTTP edge over the inbound ports. It
// parses requests, delegates to use cases, and maps domain errors to
// status codes. No business rules live here.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

const (
	tenantHeader = "X-Tenant-Id"
	planHeader   = "X-Plan"
	userHeader   = "X-User-Id"
)

type Router struct {
	ingestor    ports.DocumentIngestor
	ragService  ports.RAGQueryService
	analyzer    ports.DocumentAnalyzer
	comparer    ports.DocumentComparer
	documents   ports.DocumentReader
	maxInFlight int
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	ragService ports.RAGQueryService,
	analyzer ports.DocumentAnalyzer,
	comparer ports.DocumentComparer,
	documents ports.DocumentReader,
	maxInFlight int,
) *Router {
	return &Router{
		ingestor:    ingestor,
		ragService:  ragService,
		analyzer:    analyzer,
		comparer:    comparer,
		documents:   documents,
		maxInFlight: maxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubroutes)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/comparisons", rt.compareDocuments)

	var handler http.Handler = mux
	handler = inFlightLimitMiddleware(rt.maxInFlight, handler)
	handler = accessLogMiddleware(handler)
	handler = recoveryMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		tenantID,
		r.FormValue("title"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

// documentSubroutes dispatches /v1/documents/{id} and
// /v1/documents/{id}/analyze.
func (rt *Router) documentSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	if id, found := strings.CutSuffix(rest, "/analyze"); found {
		rt.analyzeDocument(w, r, id)
		return
	}
	rt.getDocumentByID(w, r, rest)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	doc, err := rt.documents.GetByID(r.Context(), id, tenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request, documentID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req struct {
		PlaybookID string `json:"playbook_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	analysis, err := rt.analyzer.AnalyzeDocument(r.Context(), documentID, tenantID, req.PlaybookID)
	if err != nil {
		writeError(w, err)
		return
	}

	assessment, err := rt.analyzer.CreateRiskAssessment(r.Context(), analysis, tenantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":        analysis,
		"risk_assessment": assessment,
	})
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req struct {
		Query               string   `json:"query"`
		DocumentIDs         []string `json:"document_ids"`
		MaxResults          int      `json:"max_results"`
		SimilarityThreshold float64  `json:"similarity_threshold"`
		MaxContextLength    int      `json:"max_context_length"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	resp, err := rt.ragService.Query(r.Context(), ports.RAGQueryRequest{
		Query:               req.Query,
		TenantID:            tenantID,
		Plan:                r.Header.Get(planHeader),
		DocumentIDs:         req.DocumentIDs,
		MaxResults:          req.MaxResults,
		SimilarityThreshold: req.SimilarityThreshold,
		MaxContextLength:    req.MaxContextLength,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) compareDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req struct {
		DocumentAID string `json:"document_a_id"`
		DocumentBID string `json:"document_b_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.DocumentAID == "" || req.DocumentBID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_a_id and document_b_id are required"})
		return
	}

	result, err := rt.comparer.CompareDocuments(r.Context(), req.DocumentAID, req.DocumentBID, tenantID, r.Header.Get(userHeader))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := strings.TrimSpace(r.Header.Get(tenantHeader))
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-Tenant-Id header is required"})
		return "", false
	}
	return tenantID, true
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	var msg string
	if status >= 500 && !domain.IsKind(err, domain.ErrTemporary) {
		msg = "internal server error"
	} else {
		msg = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
