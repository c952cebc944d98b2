package db

import (
	"context"
	"fmt"

	"github.com/RobertDurfee/Gerrymandering/internal/feature"
	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"gorm.io/gorm"
)

// Executor runs compiled statements on a shared pool. Each call checks out
// its own connection; statements are read-only and need no transaction.
type Executor struct {
	DB *gorm.DB
}

// Query runs stmt and returns every row keyed by column name, in order.
func (e Executor) Query(ctx context.Context, stmt query.Statement) ([]feature.Row, error) {
	rows, err := e.DB.WithContext(ctx).Raw(stmt.SQL, stmt.Args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out []feature.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(feature.Row, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Ping checks that the database answers.
func (e Executor) Ping(ctx context.Context) error {
	sqlDB, err := e.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
