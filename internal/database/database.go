// Package database provides the statement-execution seam used for test
// setup, teardown and data assertions. The executor only sees the
// StatementExecutor interface; the default implementation is a no-op stub
// and a real database/sql adapter can be substituted without touching the
// executor's control flow.
package database

import (
	"context"

	"api-test-engine/internal/types"
)

// StatementExecutor runs one SQL-like statement against a backing store.
type StatementExecutor interface {
	Execute(ctx context.Context, statement string) (*types.QueryResult, error)
}

// StubExecutor is the default executor: every statement succeeds with a
// zero-row result.
type StubExecutor struct{}

// NewStub creates the no-op executor.
func NewStub() *StubExecutor {
	return &StubExecutor{}
}

// Execute returns an empty result for any statement.
func (s *StubExecutor) Execute(_ context.Context, _ string) (*types.QueryResult, error) {
	return &types.QueryResult{RowCount: 0}, nil
}
