package usecase

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

const (
	matchContextRadius = 100

	baseMatchConfidence  = 0.7
	exactMatchBoost      = 0.2
	keywordBoostCap      = 0.1
	keywordBoostPerHit   = 0.02
	compliantConfidence  = 0.8
	reviewConfidence     = 0.5
	missingClauseRiskPct = 100.0
	lowConfidenceRiskPct = 70.0
	reviewRiskPct        = 30.0
)

// Keywords of the legal register used to boost match confidence.
var legalKeywords = []string{
	"shall", "agreement", "contract", "party", "parties",
	"liability", "damages", "breach", "termination", "clause",
}

// ComplianceUseCase evaluates a playbook's rules against a document's full
// text and persists the resulting analysis and matched clauses.
type ComplianceUseCase struct {
	documents ports.DocumentRepository
	playbooks ports.PlaybookStore
	analyses  ports.AnalysisStore
	scorer    *RiskScorer
	now       func() time.Time
}

func NewComplianceUseCase(
	documents ports.DocumentRepository,
	playbooks ports.PlaybookStore,
	analyses ports.AnalysisStore,
	scorer *RiskScorer,
) *ComplianceUseCase {
	return &ComplianceUseCase{
		documents: documents,
		playbooks: playbooks,
		analyses:  analyses,
		scorer:    scorer,
		now:       time.Now,
	}
}

// CreateRiskAssessment derives a weighted risk view from an existing
// analysis result.
func (uc *ComplianceUseCase) CreateRiskAssessment(ctx context.Context, result *domain.AnalysisResult, tenantID string) (*domain.RiskAssessment, error) {
	return uc.scorer.Assess(ctx, result, tenantID)
}

// AnalyzeDocument runs schema validation, rule evaluation and aggregation,
// in that order, failing fast on a malformed playbook before any rule runs.
func (uc *ComplianceUseCase) AnalyzeDocument(ctx context.Context, documentID, tenantID, playbookID string) (*domain.AnalysisResult, error) {
	doc, err := uc.documents.GetByID(ctx, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if doc.Status != domain.StatusReady {
		return nil, domain.WrapError(domain.ErrDocumentNotReady, "analyze document",
			fmt.Errorf("document %s has status %s", documentID, doc.Status))
	}

	playbook, err := uc.loadPlaybook(ctx, playbookID, tenantID)
	if err != nil {
		return nil, err
	}

	if schemaErrs := validatePlaybookSchema(playbook); len(schemaErrs) > 0 {
		return nil, domain.WrapError(domain.ErrInvalidPlaybook, "validate playbook",
			fmt.Errorf("%s", strings.Join(schemaErrs, "; ")))
	}

	chunks, err := uc.documents.GetChunks(ctx, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch document chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrDocumentNotReady, "analyze document",
			fmt.Errorf("document %s has no indexed chunks", documentID))
	}

	results := uc.evaluateRules(ctx, playbook.Rules, chunks)

	analysis := uc.aggregate(doc.ID, playbook.ID, results)

	analysisID, err := uc.analyses.Create(ctx, analysis, tenantID)
	if err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	analysis.AnalysisID = analysisID

	var allMatches []domain.ClauseMatch
	for _, result := range results {
		allMatches = append(allMatches, result.MatchedClauses...)
	}
	if len(allMatches) > 0 {
		if err := uc.analyses.SaveClauses(ctx, doc.ID, tenantID, allMatches); err != nil {
			return nil, fmt.Errorf("persist matched clauses: %w", err)
		}
	}

	return analysis, nil
}

func (uc *ComplianceUseCase) loadPlaybook(ctx context.Context, playbookID, tenantID string) (*domain.Playbook, error) {
	if playbookID != "" {
		playbook, err := uc.playbooks.GetByID(ctx, playbookID, tenantID)
		if err != nil {
			return nil, fmt.Errorf("fetch playbook: %w", err)
		}
		return playbook, nil
	}
	playbook, err := uc.playbooks.GetDefault(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch default playbook: %w", err)
	}
	return playbook, nil
}

// evaluateRules runs all rules concurrently; rules are pure computation with
// no shared mutable state, and aggregation waits for every rule to finish.
// A failure in one rule is isolated: that rule reports REVIEW_REQUIRED with
// zero matches instead of aborting the run.
func (uc *ComplianceUseCase) evaluateRules(ctx context.Context, rules []domain.ComplianceRule, chunks []domain.TextChunk) []domain.ComplianceResult {
	results := make([]domain.ComplianceResult, len(rules))

	var wg sync.WaitGroup
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, rule domain.ComplianceRule) {
			defer wg.Done()
			result, err := evaluateRule(ctx, rule, chunks)
			if err != nil {
				results[i] = domain.ComplianceResult{
					RuleID:          rule.ID,
					RuleName:        rule.Name,
					Status:          domain.StatusReviewRequired,
					MatchedClauses:  nil,
					MissingClause:   false,
					RiskScore:       rule.RiskWeight * reviewRiskPct,
					Recommendations: rule.Recommendations,
				}
				return
			}
			results[i] = result
		}(i, rule)
	}
	wg.Wait()

	return results
}

func evaluateRule(ctx context.Context, rule domain.ComplianceRule, chunks []domain.TextChunk) (domain.ComplianceResult, error) {
	var matched []domain.ClauseMatch

	for _, pattern := range rule.Patterns {
		if err := ctx.Err(); err != nil {
			return domain.ComplianceResult{}, err
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return domain.ComplianceResult{}, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		matched = append(matched, findPatternMatches(re, pattern, rule, chunks)...)
	}

	var status domain.ComplianceStatus
	var riskScore float64
	missingClause := false

	switch {
	case rule.Required && len(matched) == 0:
		status = domain.StatusNonCompliant
		missingClause = true
		riskScore = rule.RiskWeight * missingClauseRiskPct
	case len(matched) > 0:
		avg := averageConfidence(matched)
		switch {
		case avg >= compliantConfidence:
			status = domain.StatusCompliant
			riskScore = 0
		case avg >= reviewConfidence:
			status = domain.StatusReviewRequired
			riskScore = rule.RiskWeight * reviewRiskPct
		default:
			status = domain.StatusNonCompliant
			riskScore = rule.RiskWeight * lowConfidenceRiskPct
		}
	default:
		// Absence of an optional clause is not a finding.
		status = domain.StatusCompliant
		riskScore = 0
	}

	recommendations := []string{}
	if status != domain.StatusCompliant {
		recommendations = rule.Recommendations
	}

	return domain.ComplianceResult{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		Status:          status,
		MatchedClauses:  matched,
		MissingClause:   missingClause,
		RiskScore:       riskScore,
		Recommendations: recommendations,
	}, nil
}

// findPatternMatches searches chunk by chunk so each match keeps its page
// attribution, extracting a context window around every hit.
func findPatternMatches(re *regexp.Regexp, pattern string, rule domain.ComplianceRule, chunks []domain.TextChunk) []domain.ClauseMatch {
	var matches []domain.ClauseMatch

	for _, chunk := range chunks {
		for _, loc := range re.FindAllStringIndex(chunk.Text, -1) {
			start := loc[0] - matchContextRadius
			if start < 0 {
				start = 0
			}
			end := loc[1] + matchContextRadius
			if end > len(chunk.Text) {
				end = len(chunk.Text)
			}

			matchedText := chunk.Text[loc[0]:loc[1]]
			contextText := strings.TrimSpace(chunk.Text[start:end])
			confidence := matchConfidence(pattern, contextText, matchedText)

			page := chunk.Page
			if page == 0 {
				page = 1
			}

			matches = append(matches, domain.ClauseMatch{
				ClauseType:    rule.ClauseType,
				Text:          contextText,
				MatchedText:   matchedText,
				Confidence:    confidence,
				Page:          page,
				RiskLevel:     clauseRiskLevel(confidence),
				MatchedRuleID: rule.ID,
			})
		}
	}

	return matches
}

func matchConfidence(pattern, contextText, matchedText string) float64 {
	confidence := baseMatchConfidence

	if strings.EqualFold(pattern, matchedText) {
		confidence += exactMatchBoost
	}

	contextLower := strings.ToLower(contextText)
	hits := 0
	for _, keyword := range legalKeywords {
		if strings.Contains(contextLower, keyword) {
			hits++
		}
	}
	boost := float64(hits) * keywordBoostPerHit
	if boost > keywordBoostCap {
		boost = keywordBoostCap
	}
	confidence += boost

	if confidence > 1.0 {
		return 1.0
	}
	// Round to two decimals so threshold comparisons are not at the mercy
	// of accumulated float error.
	return math.Round(confidence*100) / 100
}

func clauseRiskLevel(confidence float64) domain.RiskLevel {
	switch {
	case confidence >= 0.9:
		return domain.RiskLow
	case confidence >= 0.7:
		return domain.RiskMedium
	case confidence >= 0.5:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

func averageConfidence(matches []domain.ClauseMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range matches {
		total += m.Confidence
	}
	return total / float64(len(matches))
}

func (uc *ComplianceUseCase) aggregate(documentID, playbookID string, results []domain.ComplianceResult) *domain.AnalysisResult {
	totalRisk := 0.0
	compliant, nonCompliant, review := 0, 0, 0
	var missingClauses []string
	var recommendations []string

	for _, result := range results {
		totalRisk += result.RiskScore
		switch result.Status {
		case domain.StatusCompliant:
			compliant++
		case domain.StatusNonCompliant:
			nonCompliant++
		case domain.StatusReviewRequired:
			review++
		}
		if result.MissingClause && result.Status == domain.StatusNonCompliant {
			missingClauses = append(missingClauses, result.RuleName)
		}
		recommendations = append(recommendations, result.Recommendations...)
	}

	overallRisk := 0
	if len(results) > 0 {
		overallRisk = int(totalRisk / (float64(len(results)) * 100.0) * 100.0)
	}
	if overallRisk > 100 {
		overallRisk = 100
	}
	if overallRisk < 0 {
		overallRisk = 0
	}

	status := domain.StatusCompliant
	if nonCompliant > 0 {
		status = domain.StatusNonCompliant
	} else if review > 0 {
		status = domain.StatusReviewRequired
	}

	compliancePct := 100
	if len(results) > 0 {
		compliancePct = compliant * 100 / len(results)
	}

	return &domain.AnalysisResult{
		DocumentID:        documentID,
		PlaybookID:        playbookID,
		OverallRiskScore:  overallRisk,
		ComplianceStatus:  status,
		ComplianceResults: results,
		MissingClauses:    missingClauses,
		Recommendations:   recommendations,
		Summary: domain.AnalysisSummary{
			TotalRulesEvaluated:  len(results),
			CompliantRules:       compliant,
			NonCompliantRules:    nonCompliant,
			ReviewRequiredRules:  review,
			CompliancePercentage: compliancePct,
			OverallRiskScore:     overallRisk,
			RiskCategory:         string(riskCategoryForScore(overallRisk)),
			AnalysisTimestamp:    uc.now().UTC().Format(time.RFC3339),
		},
		CreatedAt: uc.now().UTC(),
	}
}
