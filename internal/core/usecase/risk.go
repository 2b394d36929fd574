package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

const (
	defaultFactorWeight = 0.5

	criticalMissingMultiplier = 0.2
	manyViolationsMultiplier  = 0.15
	lowConfidenceMultiplier   = 0.1
	manyViolationsThreshold   = 3
	lowMatchConfidenceFloor   = 0.6

	baseScoreConfidence     = 0.8
	ruleCountConfidenceCap  = 0.15
	ruleCountConfidenceStep = 0.02
	matchConfidenceWeight   = 0.2
	neutralMatchConfidence  = 0.7

	trendLookback  = 30 * 24 * time.Hour
	trendThreshold = 10

	manualReviewConfidenceFloor = 0.7
)

// Weights reflect how much a clause type moves negotiation risk. Anything
// not listed carries the default weight.
var riskFactorWeights = map[string]float64{
	"indemnity_clause":        1.0,
	"liability_cap":           0.9,
	"intellectual_property":   0.9,
	"data_security":           0.9,
	"data_ownership":          0.9,
	"termination_clause":      0.8,
	"confidentiality_clause":  0.8,
	"service_level_agreement": 0.8,
	"uptime_guarantee":        0.8,
	"governing_law":           0.7,
	"payment_terms":           0.7,
	"insurance_requirements":  0.7,
	"force_majeure":           0.5,
	"non_compete":             0.6,
	"at_will_employment":      0.6,
}

// criticalRules escalate a non-compliant finding to urgent priority, and
// the subset in criticalMissingRules compounds the overall score when the
// clause is absent entirely.
var criticalRules = map[string]bool{
	"indemnity_clause":      true,
	"liability_cap":         true,
	"data_security":         true,
	"intellectual_property": true,
}

var criticalMissingRules = map[string]bool{
	"indemnity_clause": true,
	"liability_cap":    true,
	"data_security":    true,
}

var suggestedLanguage = map[string]string{
	"indemnity_clause": "Each party shall indemnify, defend, and hold harmless the other party " +
		"from and against any third-party claims arising from its breach of this Agreement, " +
		"negligence, or willful misconduct.",
	"liability_cap": "Except for breaches of confidentiality or indemnification obligations, " +
		"neither party's aggregate liability shall exceed the fees paid or payable during the " +
		"twelve (12) months preceding the claim.",
	"termination_clause": "Either party may terminate this Agreement upon thirty (30) days' " +
		"prior written notice, or immediately upon material breach that remains uncured for " +
		"fifteen (15) days after written notice.",
}

// RiskScorer turns a compliance analysis into a weighted risk assessment
// with prioritized recommendations and a score trend over prior analyses.
type RiskScorer struct {
	analyses ports.AnalysisStore
	now      func() time.Time
}

func NewRiskScorer(analyses ports.AnalysisStore) *RiskScorer {
	return &RiskScorer{analyses: analyses, now: time.Now}
}

func (s *RiskScorer) Assess(ctx context.Context, result *domain.AnalysisResult, tenantID string) (*domain.RiskAssessment, error) {
	if result == nil || len(result.ComplianceResults) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assess risk",
			fmt.Errorf("analysis has no compliance results"))
	}

	factors := buildRiskFactors(result.ComplianceResults)
	score := computeRiskScore(result.ComplianceResults, factors)
	score.Trend = s.computeTrend(ctx, result.DocumentID, tenantID, score.OverallScore)

	recommendations := buildRecommendations(result.ComplianceResults, score)

	return &domain.RiskAssessment{
		DocumentID:          result.DocumentID,
		RiskScore:           score,
		Recommendations:     recommendations,
		ComplianceSummary:   buildComplianceSummary(result),
		AssessmentTimestamp: s.now().UTC(),
	}, nil
}

func factorWeight(ruleID string) float64 {
	if w, ok := riskFactorWeights[ruleID]; ok {
		return w
	}
	return defaultFactorWeight
}

func buildRiskFactors(results []domain.ComplianceResult) []domain.RiskFactor {
	factors := make([]domain.RiskFactor, 0, len(results))
	for _, r := range results {
		weight := factorWeight(r.RuleID)
		factors = append(factors, domain.RiskFactor{
			FactorID:        r.RuleID,
			Name:            r.RuleName,
			Description:     factorDescription(r),
			Weight:          weight,
			Score:           r.RiskScore,
			Category:        string(riskCategoryForScore(int(math.Round(r.RiskScore)))),
			Recommendations: r.Recommendations,
		})
	}
	return factors
}

func factorDescription(r domain.ComplianceResult) string {
	switch {
	case r.MissingClause:
		return fmt.Sprintf("Required clause %q was not found in the document", r.RuleName)
	case r.Status == domain.StatusNonCompliant:
		return fmt.Sprintf("Clause %q was found but match confidence is low", r.RuleName)
	case r.Status == domain.StatusReviewRequired:
		return fmt.Sprintf("Clause %q needs manual review", r.RuleName)
	default:
		return fmt.Sprintf("Clause %q is present and compliant", r.RuleName)
	}
}

func computeRiskScore(results []domain.ComplianceResult, factors []domain.RiskFactor) domain.RiskScore {
	weightedSum := 0.0
	weightTotal := 0.0
	for _, f := range factors {
		weightedSum += f.Score * f.Weight
		weightTotal += f.Weight * 100.0
	}

	base := 0.0
	if weightTotal > 0 {
		base = weightedSum / weightTotal * 100.0
	}

	multiplier := 1.0
	nonCompliant := 0
	lowConfidence := false
	for _, r := range results {
		if r.Status == domain.StatusNonCompliant {
			nonCompliant++
		}
		if r.MissingClause && criticalMissingRules[r.RuleID] {
			multiplier += criticalMissingMultiplier
		}
		for _, m := range r.MatchedClauses {
			if m.Confidence < lowMatchConfidenceFloor {
				lowConfidence = true
			}
		}
	}
	if nonCompliant >= manyViolationsThreshold {
		multiplier += manyViolationsMultiplier
	}
	if lowConfidence {
		multiplier += lowConfidenceMultiplier
	}

	overall := int(math.Round(base * multiplier))
	if overall > 100 {
		overall = 100
	}
	if overall < 0 {
		overall = 0
	}

	return domain.RiskScore{
		OverallScore: overall,
		Category:     riskCategoryForScore(overall),
		Confidence:   scoreConfidence(results),
		Factors:      factors,
	}
}

func riskCategoryForScore(score int) domain.RiskCategory {
	switch {
	case score >= 80:
		return domain.CategoryCritical
	case score >= 60:
		return domain.CategoryHigh
	case score >= 30:
		return domain.CategoryMedium
	default:
		return domain.CategoryLow
	}
}

// scoreConfidence grows with rule coverage and with the quality of the
// underlying pattern matches.
func scoreConfidence(results []domain.ComplianceResult) float64 {
	coverage := float64(len(results)) * ruleCountConfidenceStep
	if coverage > ruleCountConfidenceCap {
		coverage = ruleCountConfidenceCap
	}

	matchTotal := 0.0
	matchCount := 0
	for _, r := range results {
		for _, m := range r.MatchedClauses {
			matchTotal += m.Confidence
			matchCount++
		}
	}
	avgMatch := neutralMatchConfidence
	if matchCount > 0 {
		avgMatch = matchTotal / float64(matchCount)
	}

	confidence := baseScoreConfidence + coverage + (avgMatch-neutralMatchConfidence)*matchConfidenceWeight
	if confidence > 1.0 {
		return 1.0
	}
	if confidence < 0.0 {
		return 0.0
	}
	return confidence
}

func (s *RiskScorer) computeTrend(ctx context.Context, documentID, tenantID string, currentScore int) string {
	since := s.now().Add(-trendLookback)
	records, err := s.analyses.ListByDocument(ctx, documentID, tenantID, since)
	if err != nil || len(records) < 2 {
		// Trend is best-effort, a read failure never blocks the assessment.
		return ""
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	// A swing of exactly the threshold still counts as stable.
	delta := currentScore - records[0].RiskScore
	switch {
	case delta < -trendThreshold:
		return "improving"
	case delta > trendThreshold:
		return "deteriorating"
	default:
		return "stable"
	}
}

func buildRecommendations(results []domain.ComplianceResult, score domain.RiskScore) []domain.Recommendation {
	var recs []domain.Recommendation

	for _, r := range results {
		if r.Status == domain.StatusCompliant {
			continue
		}

		impact := "medium"
		if r.Status == domain.StatusNonCompliant {
			impact = "high"
		}

		description := fmt.Sprintf("Review the %s provisions and negotiate protective language.", r.RuleName)
		if r.MissingClause {
			description = fmt.Sprintf("The document is missing a %s. Add one before execution.", r.RuleName)
		}
		if len(r.Recommendations) > 0 {
			description = r.Recommendations[0]
		}

		recs = append(recs, domain.Recommendation{
			ID:                fmt.Sprintf("rec_%s", r.RuleID),
			Title:             fmt.Sprintf("Address %s", r.RuleName),
			Description:       description,
			Priority:          recommendationPriority(r.RuleID, r.Status, score.Category),
			Category:          "compliance",
			Impact:            impact,
			Effort:            "medium",
			ClauseTypes:       []string{r.RuleID},
			SuggestedLanguage: suggestedLanguage[r.RuleID],
		})
	}

	recs = append(recs, strategicRecommendations(score)...)

	sort.SliceStable(recs, func(i, j int) bool {
		if pr := priorityRank(recs[i].Priority) - priorityRank(recs[j].Priority); pr != 0 {
			return pr > 0
		}
		return impactRank(recs[i].Impact) > impactRank(recs[j].Impact)
	})

	return recs
}

// recommendationPriority escalates with both the finding's status and the
// document's overall risk category. Critical rules that fail outright are
// always urgent.
func recommendationPriority(ruleID string, status domain.ComplianceStatus, category domain.RiskCategory) domain.RecommendationPriority {
	if criticalRules[ruleID] && status == domain.StatusNonCompliant {
		return domain.PriorityUrgent
	}

	if category == domain.CategoryCritical {
		switch status {
		case domain.StatusNonCompliant:
			return domain.PriorityUrgent
		case domain.StatusReviewRequired:
			return domain.PriorityHigh
		}
	}

	switch status {
	case domain.StatusNonCompliant:
		return domain.PriorityHigh
	case domain.StatusReviewRequired:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func strategicRecommendations(score domain.RiskScore) []domain.Recommendation {
	var recs []domain.Recommendation

	switch score.Category {
	case domain.CategoryCritical:
		recs = append(recs, domain.Recommendation{
			ID:          "rec_legal_review",
			Title:       "Immediate legal review required",
			Description: "This contract presents critical risks. Engage counsel for a full review before execution.",
			Priority:    domain.PriorityUrgent,
			Category:    "strategic",
			Impact:      "high",
			Effort:      "high",
		})
	case domain.CategoryHigh:
		recs = append(recs, domain.Recommendation{
			ID:          "rec_risk_mitigation",
			Title:       "Comprehensive risk mitigation",
			Description: "Consider additional risk mitigation measures and appropriate insurance coverage before signature.",
			Priority:    domain.PriorityHigh,
			Category:    "strategic",
			Impact:      "medium",
			Effort:      "medium",
		})
	}

	if score.Confidence < manualReviewConfidenceFloor {
		recs = append(recs, domain.Recommendation{
			ID:          "rec_manual_review",
			Title:       "Manual review recommended",
			Description: "The automated analysis has low confidence. Have legal experts validate the findings manually.",
			Priority:    domain.PriorityHigh,
			Category:    "process",
			Impact:      "medium",
			Effort:      "high",
		})
	}

	return recs
}

func priorityRank(p domain.RecommendationPriority) int {
	switch p {
	case domain.PriorityUrgent:
		return 4
	case domain.PriorityHigh:
		return 3
	case domain.PriorityMedium:
		return 2
	default:
		return 1
	}
}

func impactRank(impact string) int {
	switch impact {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

func buildComplianceSummary(result *domain.AnalysisResult) domain.ComplianceSummary {
	return domain.ComplianceSummary{
		TotalRules:     result.Summary.TotalRulesEvaluated,
		Compliant:      result.Summary.CompliantRules,
		NonCompliant:   result.Summary.NonCompliantRules,
		ReviewRequired: result.Summary.ReviewRequiredRules,
		MissingClauses: len(result.MissingClauses),
		OverallStatus:  string(result.ComplianceStatus),
	}
}
