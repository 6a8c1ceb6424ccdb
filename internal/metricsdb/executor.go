package metricsdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clipstats/clipstats/internal/scalar"
	"github.com/clipstats/clipstats/internal/sqlguard"
)

// DefaultStatementTimeout bounds a single aggregate query.
const DefaultStatementTimeout = 60 * time.Second

// Executor runs validated statements against the metrics database. The
// sqlguard.Statement parameter type is deliberate: raw strings cannot be
// executed through this type.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
}

func NewExecutor(db *sql.DB, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultStatementTimeout
	}
	return &Executor{db: db, timeout: timeout}
}

// RunScalar executes the statement and returns the first column of the
// first row. A result set with no rows is a valid execution and yields the
// absent cell; rows and columns beyond the first are ignored, which keeps
// loosely shaped translator output from hard-failing. Database errors are
// returned as-is; retries, if any, belong to the caller.
func (e *Executor) RunScalar(ctx context.Context, stmt sqlguard.Statement) (scalar.Cell, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.QueryContext(queryCtx, stmt.String())
	if err != nil {
		return scalar.Cell{}, fmt.Errorf("run scalar query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return scalar.Cell{}, fmt.Errorf("iterate scalar result: %w", err)
		}
		return scalar.AbsentCell(), nil
	}

	columns, err := rows.Columns()
	if err != nil {
		return scalar.Cell{}, fmt.Errorf("read result columns: %w", err)
	}
	if len(columns) == 0 {
		return scalar.Cell{}, fmt.Errorf("scalar result has no columns")
	}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return scalar.Cell{}, fmt.Errorf("scan scalar result: %w", err)
	}

	return scalar.FromValue(values[0]), nil
}

// HealthCheck reports whether the pool can reach the backend.
func (e *Executor) HealthCheck(ctx context.Context) error {
	return e.db.PingContext(ctx)
}
