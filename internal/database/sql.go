package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres

	"api-test-engine/internal/config"
	"api-test-engine/internal/types"
)

// SQLExecutor runs statements against a real database.
type SQLExecutor struct {
	db *sql.DB
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DatabaseConfig) (*SQLExecutor, error) {
	var dsn string
	switch cfg.Type {
	case "postgres":
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	case "mysql":
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	case "sqlserver":
		dsn = fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := sql.Open(cfg.Type, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLExecutor{db: db}, nil
}

// Close releases the connection pool.
func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

// Execute runs one statement. Queries return their rows; DML returns the
// affected row count.
func (e *SQLExecutor) Execute(ctx context.Context, statement string) (*types.QueryResult, error) {
	start := time.Now()
	trimmed := strings.TrimSpace(strings.ToLower(statement))

	if strings.HasPrefix(trimmed, "select") || strings.HasPrefix(trimmed, "show") {
		rows, err := e.db.QueryContext(ctx, statement)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()

		result, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		result.ExecutionTime = time.Since(start)
		return result, nil
	}

	res, err := e.db.ExecContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &types.QueryResult{
		RowCount:      int(affected),
		ExecutionTime: time.Since(start),
	}, nil
}

func scanRows(rows *sql.Rows) (*types.QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &types.QueryResult{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.RowCount = len(result.Rows)
	return result, nil
}
