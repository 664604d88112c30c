package components

import (
	"context"

	"github.com/vkazarins/pagecraft/internal/editor/store"
)

// Repository is the server-side component record store. It is a superset of
// the editor's store.Store contract.
type Repository interface {
	SelectActive(ctx context.Context, pageSlug string) ([]store.Record, error)
	Upsert(ctx context.Context, rec *store.Record) error
	Deactivate(ctx context.Context, pageSlug, componentType, updatedBy string) error
}
