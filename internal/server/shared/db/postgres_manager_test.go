package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vkazarins/pagecraft/internal/server/repositories/components"
)

func newManagerWithMock(t *testing.T) (*PostgresStoreManager, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &PostgresStoreManager{
		db:         conn,
		components: components.NewPostgresRepository(conn),
	}, mock
}

func activeComponentRows(updated time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"page_slug", "component_type", "content", "is_active", "version", "updated_at", "updated_by",
	}).
		AddRow("home", "sections", []byte(`[]`), true, int64(2), updated, "alice").
		AddRow("home", "page_properties", []byte(`{}`), true, int64(1), updated, "alice")
}

func TestRetirePage_DeactivatesAllComponentsInOneTx(t *testing.T) {
	m, mock := newManagerWithMock(t)
	updated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM page_components\s+WHERE page_slug = \$1 AND is_active = true`).
		WithArgs("home").
		WillReturnRows(activeComponentRows(updated))
	mock.ExpectExec(`UPDATE page_components\s+SET is_active = false`).
		WithArgs("home", "sections", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE page_components\s+SET is_active = false`).
		WithArgs("home", "page_properties", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := m.RetirePage(context.Background(), "home", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRetirePage_RollsBackOnFailure(t *testing.T) {
	m, mock := newManagerWithMock(t)
	updated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM page_components\s+WHERE page_slug = \$1 AND is_active = true`).
		WithArgs("home").
		WillReturnRows(activeComponentRows(updated))
	mock.ExpectExec(`UPDATE page_components\s+SET is_active = false`).
		WithArgs("home", "sections", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE page_components\s+SET is_active = false`).
		WithArgs("home", "page_properties", "bob").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := m.RetirePage(context.Background(), "home", "bob"); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRetirePage_NoActiveComponentsCommitsEmpty(t *testing.T) {
	m, mock := newManagerWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM page_components\s+WHERE page_slug = \$1 AND is_active = true`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{
			"page_slug", "component_type", "content", "is_active", "version", "updated_at", "updated_by",
		}))
	mock.ExpectCommit()

	if err := m.RetirePage(context.Background(), "gone", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
