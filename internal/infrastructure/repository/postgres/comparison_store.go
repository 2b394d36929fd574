package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// ComparisonStore persists comparison results keyed by the unordered
// document pair, so (A,B) and (B,A) resolve to the same row.
type ComparisonStore struct {
	db *sql.DB
}

func NewComparisonStore(db *sql.DB) *ComparisonStore {
	return &ComparisonStore{db: db}
}

func (s *ComparisonStore) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS comparisons (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	pair_low TEXT NOT NULL,
	pair_high TEXT NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (tenant_id, pair_low, pair_high)
);
`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute comparison schema ddl: %w", err)
	}
	return nil
}

func (s *ComparisonStore) GetByPair(ctx context.Context, documentAID, documentBID, tenantID string) (*domain.ComparisonResult, error) {
	low, high := orderPair(documentAID, documentBID)

	row := s.db.QueryRowContext(ctx, `
SELECT result
FROM comparisons
WHERE tenant_id = $1 AND pair_low = $2 AND pair_high = $3
`, tenantID, low, high)

	var resultRaw []byte
	if err := row.Scan(&resultRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan comparison: %w", err)
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(resultRaw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal comparison result: %w", err)
	}
	return &result, nil
}

func (s *ComparisonStore) Create(ctx context.Context, result *domain.ComparisonResult, tenantID, userID string) error {
	low, high := orderPair(result.DocumentAID, result.DocumentBID)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal comparison result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO comparisons (id, tenant_id, user_id, pair_low, pair_high, result, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (tenant_id, pair_low, pair_high) DO UPDATE
SET result = EXCLUDED.result, user_id = EXCLUDED.user_id, created_at = EXCLUDED.created_at
`,
		uuid.NewString(), tenantID, userID, low, high, resultJSON, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comparison: %w", err)
	}
	return nil
}

func orderPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}
