package artifacts

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateArtifact(ctx context.Context, a *Artifact) error
	GetArtifact(ctx context.Context, id string) (*Artifact, error)
	ListArtifacts(ctx context.Context, limit int) ([]*Artifact, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateArtifact(ctx context.Context, a *Artifact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, path, size, source_asset_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Path, a.Size, nullString(a.SourceAssetID), a.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) GetArtifact(ctx context.Context, id string) (*Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, size, source_asset_id, created_at
		FROM artifacts WHERE id = ?
	`, id)

	a, err := scanArtifact(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *SQLiteRepository) ListArtifacts(ctx context.Context, limit int) ([]*Artifact, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, path, size, source_asset_id, created_at
		FROM artifacts ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArtifact(scan func(dest ...any) error) (*Artifact, error) {
	var a Artifact
	var source sql.NullString
	var createdAt string

	if err := scan(&a.ID, &a.Path, &a.Size, &source, &createdAt); err != nil {
		return nil, err
	}
	a.SourceAssetID = source.String
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
