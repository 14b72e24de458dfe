package analysis

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, request_id, file_name, file_size, question, prompt_hash, provider, model,
       status, result_kind, result, error_message, archive_key, duration_ms, created_at
FROM analyses`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, request_id, file_name, file_size, question, prompt_hash, provider, model,
	status, result_kind, result, error_message, archive_key, duration_ms, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.RequestID,
		analysis.FileName,
		analysis.FileSize,
		analysis.Question,
		analysis.PromptHash,
		analysis.Provider,
		analysis.Model,
		analysis.Status,
		nullString(analysis.ResultKind),
		nullJSON(analysis.Result),
		nullString(analysis.ErrorMessage),
		nullString(analysis.ArchiveKey),
		analysis.DurationMs,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+`
WHERE id = $1
LIMIT 1`, analysisID)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListRecent returns analyses newest first.
func (r *PGRepo) ListRecent(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, selectColumns+`
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var resultKind, errorMessage, archiveKey sql.NullString
	var result []byte
	err := row.Scan(
		&a.ID,
		&a.RequestID,
		&a.FileName,
		&a.FileSize,
		&a.Question,
		&a.PromptHash,
		&a.Provider,
		&a.Model,
		&a.Status,
		&resultKind,
		&result,
		&errorMessage,
		&archiveKey,
		&a.DurationMs,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	a.ResultKind = resultKind.String
	a.ErrorMessage = errorMessage.String
	a.ArchiveKey = archiveKey.String
	if len(result) > 0 {
		a.Result = append([]byte(nil), result...)
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

var _ Repo = (*PGRepo)(nil)
