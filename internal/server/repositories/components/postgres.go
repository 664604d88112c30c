// Package components provides the PostgreSQL-backed repository for persisted
// page component records keyed by (page_slug, component_type).
package components

import (
	"context"
	"fmt"

	"github.com/vkazarins/pagecraft/internal/common"
	"github.com/vkazarins/pagecraft/internal/dbx"
	"github.com/vkazarins/pagecraft/internal/editor/store"
)

// PostgresRepository implements component storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes rec under its (page_slug, component_type) key with an
// optimistic concurrency check: the update only applies when the stored
// version equals the version the writer observed (rec.Version); a fresh
// insert expects version 0. On a version mismatch no row is written and
// ErrVersionConflict is returned. On success rec.Version is advanced to the
// stored value.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *store.Record) error {
	query := `
		INSERT INTO page_components (page_slug, component_type, content, is_active, version, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5 + 1, $6, $7)
		ON CONFLICT (page_slug, component_type)
		DO UPDATE SET
			content = EXCLUDED.content,
			is_active = EXCLUDED.is_active,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
			WHERE page_components.version = $5;
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.PageSlug, rec.ComponentType, []byte(rec.Content), rec.IsActive, rec.Version, rec.UpdatedAt, rec.UpdatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		rec.Version++
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SelectActive returns all active component records for pageSlug.
func (r *PostgresRepository) SelectActive(ctx context.Context, pageSlug string) ([]store.Record, error) {
	query := `
		SELECT page_slug, component_type, content, is_active, version, updated_at, updated_by
		FROM page_components
		WHERE page_slug = $1 AND is_active = true
	`
	rows, err := r.db.QueryContext(ctx, query, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to select components: %w", err)
	}
	defer rows.Close()

	var result []store.Record
	for rows.Next() {
		var (
			item    store.Record
			content []byte
		)
		if err := rows.Scan(
			&item.PageSlug, &item.ComponentType, &content,
			&item.IsActive, &item.Version, &item.UpdatedAt, &item.UpdatedBy,
		); err != nil {
			return nil, err
		}
		item.Content = content
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Deactivate soft-deletes one component. The payload is kept; only is_active
// flips, so the record can be restored by a later upsert.
func (r *PostgresRepository) Deactivate(ctx context.Context, pageSlug, componentType, updatedBy string) error {
	query := `
		UPDATE page_components
		SET is_active = false, version = version + 1, updated_at = now(), updated_by = $3
		WHERE page_slug = $1 AND component_type = $2 AND is_active = true;
	`
	res, err := r.db.ExecContext(ctx, query, pageSlug, componentType, updatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
