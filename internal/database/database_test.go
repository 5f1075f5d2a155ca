package database

import (
	"context"
	"testing"

	"api-test-engine/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubReturnsNoRows(t *testing.T) {
	stub := NewStub()

	qr, err := stub.Execute(context.Background(), "SELECT * FROM users")
	require.NoError(t, err)
	assert.Equal(t, 0, qr.RowCount)
	assert.Empty(t, qr.Rows)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

var _ StatementExecutor = (*StubExecutor)(nil)
var _ StatementExecutor = (*SQLExecutor)(nil)
