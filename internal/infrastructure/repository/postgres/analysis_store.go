package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// AnalysisStore persists compliance analyses and the clauses they matched.
// Results are append-only, a re-analysis inserts a new row.
type AnalysisStore struct {
	db *sql.DB
}

func NewAnalysisStore(db *sql.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

func (s *AnalysisStore) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	playbook_id TEXT NOT NULL,
	overall_risk_score INTEGER NOT NULL,
	compliance_status TEXT NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_document ON analyses(tenant_id, document_id, created_at DESC);

CREATE TABLE IF NOT EXISTS clauses (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	clause_type TEXT NOT NULL,
	text TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	page INTEGER NOT NULL DEFAULT 0,
	risk_level TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clauses_document ON clauses(tenant_id, document_id);
`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute analysis schema ddl: %w", err)
	}
	return nil
}

func (s *AnalysisStore) Create(ctx context.Context, result *domain.AnalysisResult, tenantID string) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal analysis result: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO analyses (id, tenant_id, document_id, playbook_id, overall_risk_score, compliance_status, result, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		id, tenantID, result.DocumentID, result.PlaybookID,
		result.OverallRiskScore, string(result.ComplianceStatus), resultJSON, result.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

func (s *AnalysisStore) SaveClauses(ctx context.Context, documentID, tenantID string, matches []domain.ClauseMatch) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clauses tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The clause set reflects the latest analysis only.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM clauses WHERE tenant_id = $1 AND document_id = $2`,
		tenantID, documentID,
	); err != nil {
		return fmt.Errorf("delete stale clauses: %w", err)
	}

	now := time.Now().UTC()
	for _, match := range matches {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO clauses (id, tenant_id, document_id, clause_type, text, confidence, page, risk_level, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
			uuid.NewString(), tenantID, documentID, match.ClauseType,
			match.Text, match.Confidence, match.Page, string(match.RiskLevel), now,
		); err != nil {
			return fmt.Errorf("insert clause: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clauses tx: %w", err)
	}
	return nil
}

func (s *AnalysisStore) GetClauses(ctx context.Context, documentID, tenantID string) ([]domain.Clause, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, document_id, clause_type, text, confidence, page, risk_level, created_at
FROM clauses
WHERE tenant_id = $1 AND document_id = $2
ORDER BY clause_type, confidence DESC
`, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("query clauses: %w", err)
	}
	defer rows.Close()

	var clauses []domain.Clause
	for rows.Next() {
		var clause domain.Clause
		var riskLevel string
		if err := rows.Scan(
			&clause.ID, &clause.DocumentID, &clause.ClauseType, &clause.Text,
			&clause.Confidence, &clause.Page, &riskLevel, &clause.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		clause.RiskLevel = domain.RiskLevel(riskLevel)
		clauses = append(clauses, clause)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clauses: %w", err)
	}
	return clauses, nil
}

func (s *AnalysisStore) ListByDocument(ctx context.Context, documentID, tenantID string, since time.Time) ([]domain.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, overall_risk_score, created_at
FROM analyses
WHERE tenant_id = $1 AND document_id = $2 AND created_at >= $3
ORDER BY created_at
`, tenantID, documentID, since)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var records []domain.AnalysisRecord
	for rows.Next() {
		var record domain.AnalysisRecord
		if err := rows.Scan(&record.ID, &record.RiskScore, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis records: %w", err)
	}
	return records, nil
}
