package domain

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type ComplianceStatus string

const (
	StatusCompliant      ComplianceStatus = "compliant"
	StatusNonCompliant   ComplianceStatus = "non_compliant"
	StatusReviewRequired ComplianceStatus = "review_required"
)

// Playbook is a tenant-owned, versioned set of compliance rules. A playbook
// referenced by an analysis is never mutated in place; updates create a new
// logical version.
type Playbook struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenant_id"`
	Version     string           `json:"version"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Rules       []ComplianceRule `json:"rules"`
	IsDefault   bool             `json:"is_default"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ComplianceRule struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	ClauseType      string   `json:"clause_type"`
	Required        bool     `json:"required"`
	Patterns        []string `json:"patterns"`
	RiskWeight      float64  `json:"risk_weight"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ClauseMatch is a span of document text matched by a rule pattern, with
// surrounding context and a confidence heuristic.
type ClauseMatch struct {
	ClauseType    string    `json:"clause_type"`
	Text          string    `json:"text"`
	MatchedText   string    `json:"matched_text"`
	Confidence    float64   `json:"confidence"`
	Page          int       `json:"page"`
	RiskLevel     RiskLevel `json:"risk_level"`
	MatchedRuleID string    `json:"matched_rule_id,omitempty"`
}

// Clause is the persisted form of a ClauseMatch, tied to a document.
type Clause struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ClauseType string    `json:"clause_type"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Page       int       `json:"page"`
	RiskLevel  RiskLevel `json:"risk_level"`
	CreatedAt  time.Time `json:"created_at"`
}

type ComplianceResult struct {
	RuleID          string           `json:"rule_id"`
	RuleName        string           `json:"rule_name"`
	Status          ComplianceStatus `json:"status"`
	MatchedClauses  []ClauseMatch    `json:"matched_clauses"`
	MissingClause   bool             `json:"missing_clause"`
	RiskScore       float64          `json:"risk_score"`
	Recommendations []string         `json:"recommendations"`
}

// AnalysisResult aggregates all rule results for one (document, playbook)
// pair. Re-analysis creates a new result, existing ones are never mutated.
type AnalysisResult struct {
	AnalysisID        string             `json:"analysis_id,omitempty"`
	DocumentID        string             `json:"document_id"`
	PlaybookID        string             `json:"playbook_id"`
	OverallRiskScore  int                `json:"overall_risk_score"`
	ComplianceStatus  ComplianceStatus   `json:"compliance_status"`
	ComplianceResults []ComplianceResult `json:"compliance_results"`
	MissingClauses    []string           `json:"missing_clauses"`
	Recommendations   []string           `json:"recommendations"`
	Summary           AnalysisSummary    `json:"summary"`
	CreatedAt         time.Time          `json:"created_at"`
}

type AnalysisSummary struct {
	TotalRulesEvaluated  int    `json:"total_rules_evaluated"`
	CompliantRules       int    `json:"compliant_rules"`
	NonCompliantRules    int    `json:"non_compliant_rules"`
	ReviewRequiredRules  int    `json:"review_required_rules"`
	CompliancePercentage int    `json:"compliance_percentage"`
	OverallRiskScore     int    `json:"overall_risk_score"`
	RiskCategory         string `json:"risk_category"`
	AnalysisTimestamp    string `json:"analysis_timestamp"`
}
