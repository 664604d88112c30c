// Package db wires the PostgreSQL connection, migrations and repositories
// for the component store.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/vkazarins/pagecraft/internal/dbx"
	"github.com/vkazarins/pagecraft/internal/server/migrations"
	"github.com/vkazarins/pagecraft/internal/server/repositories/components"
)

type PostgresStoreManager struct {
	db         *sql.DB
	components components.Repository
}

func (m *PostgresStoreManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresStoreManager) Components() components.Repository {
	return m.components
}

func (m *PostgresStoreManager) Close() error {
	return m.db.Close()
}

// RetirePage soft-deletes every active component of a page in one
// transaction. Either the whole page disappears from loads or none of it
// does; a page must never be left half retired.
func (m *PostgresStoreManager) RetirePage(ctx context.Context, pageSlug, updatedBy string) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := components.NewPostgresRepository(tx)

		records, err := repo.SelectActive(ctx, pageSlug)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := repo.Deactivate(ctx, pageSlug, rec.ComponentType, updatedBy); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *PostgresStoreManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

// NewPostgresStoreManager opens the database, runs migrations and builds the
// component repository.
func NewPostgresStoreManager(ctx context.Context, dsn string) (StoreManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresStoreManager{
		db:         db,
		components: components.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
