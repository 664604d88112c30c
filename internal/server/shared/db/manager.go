package db

import (
	"context"
	"database/sql"

	"github.com/vkazarins/pagecraft/internal/server/repositories/components"
)

// StoreManager bundles the open database handle with the repositories built
// on top of it.
type StoreManager interface {
	Conn() *sql.DB
	Components() components.Repository
	RetirePage(ctx context.Context, pageSlug, updatedBy string) error
	RunMigrations(ctx context.Context) error
	Close() error
}
