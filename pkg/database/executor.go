package database

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/params"
	"github.com/dynasql/dynasql/pkg/sql"
)

// ExecutionResult holds the rows, row count and wall-clock execution time of
// one query.
type ExecutionResult struct {
	Rows            []map[string]any `json:"rows"`
	RowCount        int              `json:"row_count"`
	ExecutionMillis int64            `json:"execution_time_ms"`
}

// Executor runs final SQL text with bound parameters. It owns connection
// lifecycle, any driver-level retry policy, and timing.
type Executor interface {
	Execute(ctx context.Context, sqlText string, bound map[string]params.Value) (*ExecutionResult, error)
}

// PostgresExecutor executes queries against a pgx connection pool. Named
// :marker parameters are rewritten to positional placeholders before
// execution; pgx binds values natively.
type PostgresExecutor struct {
	db     *DB
	logger *zap.Logger
}

// NewPostgresExecutor creates an executor on an existing pool.
func NewPostgresExecutor(db *DB, logger *zap.Logger) *PostgresExecutor {
	return &PostgresExecutor{db: db, logger: logger}
}

// Execute runs the query and collects rows as column-name keyed maps.
// Failures are wrapped in apperrors.ExecutionError and never retried here.
func (e *PostgresExecutor) Execute(ctx context.Context, sqlText string, bound map[string]params.Value) (*ExecutionResult, error) {
	positional, values := sql.RewriteNamedMarkers(sqlText, bound)

	start := time.Now()
	rows, err := e.db.Query(ctx, positional, values...)
	if err != nil {
		return nil, &apperrors.ExecutionError{Err: err}
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		rowValues, err := rows.Values()
		if err != nil {
			return nil, &apperrors.ExecutionError{Err: err}
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = rowValues[i]
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, &apperrors.ExecutionError{Err: err}
	}

	elapsed := time.Since(start)
	e.logger.Info("Executed query",
		zap.Int("row_count", len(resultRows)),
		zap.Duration("duration", elapsed),
	)

	return &ExecutionResult{
		Rows:            resultRows,
		RowCount:        len(resultRows),
		ExecutionMillis: elapsed.Milliseconds(),
	}, nil
}

var _ Executor = (*PostgresExecutor)(nil)
