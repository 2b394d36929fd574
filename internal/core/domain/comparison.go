package domain

import "time"

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

type TextChange struct {
	ChangeType ChangeType `json:"change_type"`
	Text       string     `json:"text"`
	LineNumber int        `json:"line_number,omitempty"`
}

type ClauseChange struct {
	ChangeType ChangeType `json:"change_type"`
	ClauseType string     `json:"clause_type"`
	OldText    string     `json:"old_text,omitempty"`
	NewText    string     `json:"new_text,omitempty"`
	RiskImpact string     `json:"risk_impact"`
	Page       int        `json:"page,omitempty"`
}

type ChangeSummary struct {
	ClausesAdded    int `json:"clauses_added"`
	ClausesRemoved  int `json:"clauses_removed"`
	ClausesModified int `json:"clauses_modified"`
	TextChanges     int `json:"text_changes"`
}

type HighRiskChange struct {
	Type        string `json:"type"`
	ClauseType  string `json:"clause_type"`
	Risk        string `json:"risk"`
	Description string `json:"description"`
}

type ChangeRiskAssessment struct {
	OverallRisk     string           `json:"overall_risk"`
	HighRiskChanges []HighRiskChange `json:"high_risk_changes"`
	Recommendations []string         `json:"recommendations"`
	ChangeSummary   ChangeSummary    `json:"change_summary"`
}

// ComparisonResult is stored once per unordered document pair; comparing
// (A,B) and (B,A) resolves to the same record.
type ComparisonResult struct {
	DocumentAID     string               `json:"document_a_id"`
	DocumentBID     string               `json:"document_b_id"`
	TextChanges     []TextChange         `json:"text_changes"`
	ClauseChanges   []ClauseChange       `json:"clause_changes"`
	SimilarityScore float64              `json:"similarity_score"`
	RiskAssessment  ChangeRiskAssessment `json:"risk_assessment"`
	Summary         string               `json:"summary"`
	CreatedAt       time.Time            `json:"created_at,omitempty"`
}
