package metricsdb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/clipstats/clipstats/internal/scalar"
	"github.com/clipstats/clipstats/internal/sqlguard"
)

func TestRunScalarReturnsFirstCell(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewExecutor(db, time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM videos")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	cell, err := executor.RunScalar(context.Background(), mustValidate(t, "SELECT COUNT(*) FROM videos"))
	if err != nil {
		t.Fatalf("RunScalar() error = %v", err)
	}
	if got := cell.Normalize(nil); got != 42 {
		t.Fatalf("Normalize() = %v, want 42", got)
	}
	assertSQLMock(t, mock)
}

func TestRunScalarEmptyResultSetIsAbsentNotError(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewExecutor(db, time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(delta_views_count) FROM video_snapshots WHERE 1=0")).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}))

	cell, err := executor.RunScalar(context.Background(), mustValidate(t, "SELECT SUM(delta_views_count) FROM video_snapshots WHERE 1=0"))
	if err != nil {
		t.Fatalf("RunScalar() error = %v", err)
	}
	if cell.Kind() != scalar.Absent {
		t.Fatalf("Kind() = %v, want Absent", cell.Kind())
	}
	if got := cell.Normalize(nil); got != 0 {
		t.Fatalf("Normalize() = %v, want 0", got)
	}
	assertSQLMock(t, mock)
}

func TestRunScalarNullCellNormalizesToZero(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewExecutor(db, time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(views_count) FROM videos")).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	cell, err := executor.RunScalar(context.Background(), mustValidate(t, "SELECT SUM(views_count) FROM videos"))
	if err != nil {
		t.Fatalf("RunScalar() error = %v", err)
	}
	if cell.Kind() != scalar.Null {
		t.Fatalf("Kind() = %v, want Null", cell.Kind())
	}
	if got := cell.Normalize(nil); got != 0 {
		t.Fatalf("Normalize() = %v, want 0", got)
	}
	assertSQLMock(t, mock)
}

func TestRunScalarTextualCellParses(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewExecutor(db, time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(likes_count) FROM videos")).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("7"))

	cell, err := executor.RunScalar(context.Background(), mustValidate(t, "SELECT AVG(likes_count) FROM videos"))
	if err != nil {
		t.Fatalf("RunScalar() error = %v", err)
	}
	if got := cell.Normalize(nil); got != 7 {
		t.Fatalf("Normalize() = %v, want 7", got)
	}
	assertSQLMock(t, mock)
}

func TestRunScalarIgnoresExtraRowsAndColumns(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewExecutor(db, time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT creator_id, COUNT(*) FROM videos GROUP BY creator_id")).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id", "count"}).
			AddRow(int64(5), int64(100)).
			AddRow(int64(6), int64(200)))

	cell, err := executor.RunScalar(context.Background(), mustValidate(t, "SELECT creator_id, COUNT(*) FROM videos GROUP BY creator_id"))
	if err != nil {
		t.Fatalf("RunScalar() error = %v", err)
	}
	if got := cell.Normalize(nil); got != 5 {
		t.Fatalf("Normalize() = %v, want first cell of first row", got)
	}
	assertSQLMock(t, mock)
}

func TestRunScalarSurfacesDatabaseError(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewExecutor(db, time.Minute)

	backendErr := errors.New("syntax error at or near \"FORM\"")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FORM videos")).WillReturnError(backendErr)

	_, err := executor.RunScalar(context.Background(), mustValidate(t, "SELECT COUNT(*) FORM videos"))
	if !errors.Is(err, backendErr) {
		t.Fatalf("error = %v, want wrapped backend error", err)
	}
	assertSQLMock(t, mock)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), DBConfig{Driver: "sqlite"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenRequiresDSNForPostgres(t *testing.T) {
	_, err := Open(context.Background(), DBConfig{Driver: DriverPostgres})
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func mustValidate(t *testing.T, sqlText string) sqlguard.Statement {
	t.Helper()
	stmt, err := sqlguard.Validate(sqlText)
	if err != nil {
		t.Fatalf("Validate(%q) error = %v", sqlText, err)
	}
	return stmt
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
