package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/playbook"
)

const builtinPrefix = "builtin:"

// PlaybookStore serves tenant playbooks from Postgres and falls back to
// the embedded built-in templates.
type PlaybookStore struct {
	db *sql.DB
}

func NewPlaybookStore(db *sql.DB) *PlaybookStore {
	return &PlaybookStore{db: db}
}

func (s *PlaybookStore) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS playbooks (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	version TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	rules JSONB NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_playbooks_tenant ON playbooks(tenant_id);
`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute playbook schema ddl: %w", err)
	}
	return nil
}

func (s *PlaybookStore) GetByID(ctx context.Context, id, tenantID string) (*domain.Playbook, error) {
	if strings.HasPrefix(id, builtinPrefix) {
		return playbook.Builtin(strings.TrimPrefix(id, builtinPrefix))
	}

	row := s.db.QueryRowContext(ctx, `
SELECT id, tenant_id, version, name, description, rules, is_default, created_at
FROM playbooks
WHERE id = $1 AND tenant_id = $2
`, id, tenantID)

	pb, err := scanPlaybook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPlaybookNotFound, "get playbook",
				fmt.Errorf("playbook %s", id))
		}
		return nil, err
	}
	return pb, nil
}

func (s *PlaybookStore) GetDefault(ctx context.Context, tenantID string) (*domain.Playbook, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, tenant_id, version, name, description, rules, is_default, created_at
FROM playbooks
WHERE tenant_id = $1 AND is_default = TRUE
ORDER BY created_at DESC
LIMIT 1
`, tenantID)

	pb, err := scanPlaybook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return playbook.Default()
		}
		return nil, err
	}
	return pb, nil
}

func scanPlaybook(row *sql.Row) (*domain.Playbook, error) {
	var pb domain.Playbook
	var rulesRaw []byte

	err := row.Scan(
		&pb.ID, &pb.TenantID, &pb.Version, &pb.Name, &pb.Description,
		&rulesRaw, &pb.IsDefault, &pb.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan playbook: %w", err)
	}

	if err := json.Unmarshal(rulesRaw, &pb.Rules); err != nil {
		return nil, fmt.Errorf("unmarshal playbook rules: %w", err)
	}
	return &pb, nil
}
