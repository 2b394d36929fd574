package domain

import "time"

type RiskCategory string

const (
	CategoryCritical RiskCategory = "critical" // 80-100
	CategoryHigh     RiskCategory = "high"     // 60-79
	CategoryMedium   RiskCategory = "medium"   // 30-59
	CategoryLow      RiskCategory = "low"      // 0-29
)

type RecommendationPriority string

const (
	PriorityUrgent RecommendationPriority = "urgent"
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// RiskFactor is a per-rule view derived from a ComplianceResult. Factors are
// never persisted on their own, they are recomputed from stored analyses.
type RiskFactor struct {
	FactorID        string   `json:"factor_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Weight          float64  `json:"weight"`
	Score           float64  `json:"score"`
	Category        string   `json:"category"`
	Recommendations []string `json:"recommendations"`
}

type RiskScore struct {
	OverallScore int          `json:"overall_score"`
	Category     RiskCategory `json:"category"`
	Confidence   float64      `json:"confidence"`
	Factors      []RiskFactor `json:"factors"`
	Trend        string       `json:"trend,omitempty"` // improving, stable, deteriorating
}

type Recommendation struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Priority          RecommendationPriority `json:"priority"`
	Category          string                 `json:"category"`
	Impact            string                 `json:"impact"`
	Effort            string                 `json:"effort"`
	ClauseTypes       []string               `json:"clause_types"`
	SuggestedLanguage string                 `json:"suggested_language,omitempty"`
}

type ComplianceSummary struct {
	TotalRules     int    `json:"total_rules"`
	Compliant      int    `json:"compliant"`
	NonCompliant   int    `json:"non_compliant"`
	ReviewRequired int    `json:"review_required"`
	MissingClauses int    `json:"missing_clauses"`
	OverallStatus  string `json:"overall_status"`
}

type RiskAssessment struct {
	DocumentID          string            `json:"document_id"`
	RiskScore           RiskScore         `json:"risk_score"`
	Recommendations     []Recommendation  `json:"recommendations"`
	ComplianceSummary   ComplianceSummary `json:"compliance_summary"`
	AssessmentTimestamp time.Time         `json:"assessment_timestamp"`
}

// AnalysisRecord is the minimal stored view of a past analysis used for
// trend computation.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	RiskScore int       `json:"risk_score"`
	CreatedAt time.Time `json:"created_at"`
}
