package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

const (
	defaultMaxContextLength = 4000
	defaultAnswerMaxTokens  = 1000
	defaultTemperature      = 0.1
)

// RAGConfig carries the orchestration tunables: plan-tiered model names,
// the single fallback model, and the per-tenant query rate limit.
type RAGConfig struct {
	ModelByPlan      map[string]string
	FallbackModel    string
	MaxTokens        int
	Temperature      float64
	QueriesPerWindow int
	RateWindow       time.Duration
}

func (c RAGConfig) normalize() RAGConfig {
	out := c
	if out.ModelByPlan == nil {
		out.ModelByPlan = map[string]string{
			"free":       "claude-3-haiku-20240307",
			"pro":        "claude-3-sonnet-20240229",
			"enterprise": "claude-3-opus-20240229",
		}
	}
	if out.FallbackModel == "" {
		out.FallbackModel = "claude-3-sonnet-20240229"
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = defaultAnswerMaxTokens
	}
	if out.Temperature <= 0 {
		out.Temperature = defaultTemperature
	}
	if out.QueriesPerWindow <= 0 {
		out.QueriesPerWindow = 30
	}
	if out.RateWindow <= 0 {
		out.RateWindow = time.Minute
	}
	return out
}

// RAGUseCase composes search and answer generation into one query-answer
// transaction, with caching, rate limiting and usage accounting at the
// boundary.
type RAGUseCase struct {
	search    *SearchUseCase
	generator ports.AnswerGenerator
	cache     ports.ResponseCache
	limiter   ports.RateLimiter
	usage     ports.UsageTracker
	cfg       RAGConfig
	now       func() time.Time
}

func NewRAGUseCase(
	search *SearchUseCase,
	generator ports.AnswerGenerator,
	cache ports.ResponseCache,
	limiter ports.RateLimiter,
	usage ports.UsageTracker,
	cfg RAGConfig,
) *RAGUseCase {
	return &RAGUseCase{
		search:    search,
		generator: generator,
		cache:     cache,
		limiter:   limiter,
		usage:     usage,
		cfg:       cfg.normalize(),
		now:       time.Now,
	}
}

func (uc *RAGUseCase) Query(ctx context.Context, req ports.RAGQueryRequest) (*domain.RAGResponse, error) {
	start := uc.now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "rag query", fmt.Errorf("empty query"))
	}
	if req.TenantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "rag query", fmt.Errorf("tenant id is required"))
	}
	if req.SimilarityThreshold <= 0 {
		req.SimilarityThreshold = defaultSimilarityFloor
	}
	if req.MaxContextLength <= 0 {
		req.MaxContextLength = defaultMaxContextLength
	}

	if uc.limiter != nil {
		allowed, _, err := uc.limiter.Check(ctx, req.TenantID, "rag_query", uc.cfg.QueriesPerWindow, uc.cfg.RateWindow)
		if err == nil && !allowed {
			return nil, domain.WrapError(domain.ErrRateLimited, "rag query", fmt.Errorf("tenant %s", req.TenantID))
		}
	}

	filter := domain.SearchFilter{TenantID: req.TenantID, DocumentIDs: req.DocumentIDs}
	if uc.cache != nil {
		if cached, ok := uc.cache.GetRAGResponse(ctx, filter, query, req.SimilarityThreshold); ok {
			cached.Cached = true
			return cached, nil
		}
	}

	results, err := uc.search.Search(ctx, SearchParams{
		Query:               query,
		Filter:              filter,
		Limit:               req.MaxResults,
		SimilarityThreshold: req.SimilarityThreshold,
		IncludeContext:      true,
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		// Valid empty state: no LLM call, no wasted cost or latency.
		return &domain.RAGResponse{
			Answer:         noResultsAnswer,
			Citations:      []domain.Citation{},
			Confidence:     0.0,
			ModelUsed:      "none",
			ProcessingTime: uc.now().Sub(start).Seconds(),
		}, nil
	}

	contextText := assembleContext(results, req.MaxContextLength)
	answer, modelUsed, genErr := uc.generateWithFallback(ctx, query, contextText, req.Plan)

	response := &domain.RAGResponse{
		Citations:      extractCitations(results),
		ProcessingTime: uc.now().Sub(start).Seconds(),
	}

	if genErr != nil {
		// Degraded answer beats a hard failure: the caller always gets a
		// well-formed response object.
		response.Answer = fmt.Sprintf(
			"I encountered an error while generating an answer to your question: %v. "+
				"The relevant document excerpts are cited below; please try again shortly.", genErr)
		response.Confidence = 0.0
		response.ModelUsed = "error"
		return response, nil
	}

	response.Answer = answer
	response.ModelUsed = modelUsed
	response.Confidence = scoreAnswerConfidence(answer)

	if uc.usage != nil {
		_ = uc.usage.Increment(ctx, req.TenantID, "rag_queries", 1)
	}
	if uc.cache != nil {
		_ = uc.cache.SetRAGResponse(ctx, filter, query, req.SimilarityThreshold, response)
	}

	return response, nil
}

func (uc *RAGUseCase) generateWithFallback(ctx context.Context, query, contextText, plan string) (string, string, error) {
	primary := uc.modelForPlan(plan)
	userPrompt := buildRAGUserPrompt(query, contextText)

	answer, err := uc.generator.Generate(ctx, ragSystemPrompt, userPrompt, primary, uc.cfg.MaxTokens, uc.cfg.Temperature)
	if err == nil {
		return answer, primary, nil
	}
	if primary == uc.cfg.FallbackModel {
		return "", "", domain.WrapError(domain.ErrAnswerGeneration, "generate answer", err)
	}

	answer, fallbackErr := uc.generator.Generate(ctx, ragSystemPrompt, userPrompt, uc.cfg.FallbackModel, uc.cfg.MaxTokens, uc.cfg.Temperature)
	if fallbackErr != nil {
		return "", "", domain.WrapError(domain.ErrAnswerGeneration, "generate answer",
			fmt.Errorf("primary %s: %w; fallback %s: %w", primary, err, uc.cfg.FallbackModel, fallbackErr))
	}
	return answer, uc.cfg.FallbackModel, nil
}

func (uc *RAGUseCase) modelForPlan(plan string) string {
	if model, ok := uc.cfg.ModelByPlan[strings.ToLower(strings.TrimSpace(plan))]; ok {
		return model
	}
	return uc.cfg.FallbackModel
}

var hedgingPhrases = []string{
	"not clear", "unclear", "insufficient information",
	"cannot determine", "may be", "might be", "possibly",
}

// scoreAnswerConfidence is a display heuristic, not a calibrated
// probability: citations and detail raise it, hedging language lowers it.
func scoreAnswerConfidence(answer string) float64 {
	confidence := 0.5
	lower := strings.ToLower(answer)

	if strings.Contains(lower, "page") || strings.Contains(lower, "section") {
		confidence += 0.2
	}
	if len(answer) > 200 {
		confidence += 0.1
	}
	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			confidence -= 0.1
			break
		}
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
