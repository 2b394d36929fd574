package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	title TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents(tenant_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);

CREATE TABLE IF NOT EXISTS document_chunks (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	text TEXT NOT NULL,
	page INTEGER NOT NULL DEFAULT 0,
	start_char INTEGER NOT NULL DEFAULT 0,
	end_char INTEGER NOT NULL DEFAULT 0,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	UNIQUE (document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_document_chunks_document ON document_chunks(document_id, chunk_index);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, tenant_id, title, filename, mime_type, storage_path, status, error_message, page_count, chunk_count, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, doc.TenantID, doc.Title, doc.Filename, doc.MimeType, doc.StoragePath,
		string(doc.Status), doc.Error, doc.PageCount, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id, tenantID string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, title, filename, mime_type, storage_path, status, error_message, page_count, chunk_count, created_at, updated_at
FROM documents
WHERE id = $1 AND tenant_id = $2
`, id, tenantID)

	var doc domain.Document
	var status string

	err := row.Scan(
		&doc.ID, &doc.TenantID, &doc.Title, &doc.Filename, &doc.MimeType, &doc.StoragePath,
		&status, &doc.Error, &doc.PageCount, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document",
				fmt.Errorf("document %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepository) UpdateIndexStats(ctx context.Context, id string, pageCount, chunkCount int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET page_count = $2, chunk_count = $3, updated_at = $4
WHERE id = $1
`, id, pageCount, chunkCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update index stats: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveChunks(ctx context.Context, documentID string, chunks []domain.TextChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunks tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Re-processing replaces the previous chunk set wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO document_chunks (id, document_id, chunk_index, text, page, start_char, end_char, metadata)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
			chunk.ID, documentID, chunk.ChunkIndex, chunk.Text, chunk.Page, chunk.StartChar, chunk.EndChar, metadataJSON,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetChunks(ctx context.Context, documentID, tenantID string) ([]domain.TextChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.document_id, c.chunk_index, c.text, c.page, c.start_char, c.end_char, c.metadata
FROM document_chunks c
JOIN documents d ON d.id = c.document_id
WHERE c.document_id = $1 AND d.tenant_id = $2
ORDER BY c.chunk_index
`, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.TextChunk
	for rows.Next() {
		var chunk domain.TextChunk
		var metadataRaw []byte
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Text,
			&chunk.Page, &chunk.StartChar, &chunk.EndChar, &metadataRaw,
		); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}

func (r *DocumentRepository) GetFullText(ctx context.Context, documentID, tenantID string) (string, error) {
	chunks, err := r.GetChunks(ctx, documentID, tenantID)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", domain.WrapError(domain.ErrDocumentNotReady, "get full text",
			fmt.Errorf("document %s has no chunks", documentID))
	}

	// Overlap between adjacent chunks is skipped using the recorded offsets
	// so the reassembled text matches the extracted original.
	var b strings.Builder
	covered := 0
	for _, chunk := range chunks {
		if chunk.EndChar <= covered {
			continue
		}
		text := chunk.Text
		if chunk.StartChar < covered {
			skip := covered - chunk.StartChar
			if skip < len(text) {
				text = text[skip:]
			} else {
				text = ""
			}
		}
		b.WriteString(text)
		covered = chunk.EndChar
	}
	return b.String(), nil
}
