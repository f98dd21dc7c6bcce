package connectors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// sqlExecutor runs bound statements on a database/sql pool. It backs the
// MySQL and SQLite connectors.
type sqlExecutor struct {
	db    *sql.DB
	style PlaceholderStyle
	tag   string
}

// NewSession opens a session that holds one pooled connection from its
// first Execute until Release
func (e *sqlExecutor) NewSession() Session {
	return &sqlSession{executor: e}
}

func (e *sqlExecutor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

func (e *sqlExecutor) Close() error {
	if e.db == nil {
		return nil
	}
	log := logging.New(e.tag)
	log.Debugf("Closing connection pool")
	err := e.db.Close()
	if err != nil {
		log.Errorf("Error closing connection pool: %v", err)
	} else {
		log.Debugf("Connection pool closed")
	}
	return err
}

type sqlSession struct {
	executor *sqlExecutor
	conn     *sql.Conn
}

func (s *sqlSession) Execute(ctx context.Context, expression string, properties map[string]any, caller *domain.Caller) ([]domain.Row, error) {
	statement, args, err := BindSQL(expression, properties, caller, s.executor.style)
	if err != nil {
		return nil, err
	}

	if s.conn == nil {
		conn, err := s.executor.db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire connection: %w", err)
		}
		s.conn = conn
	}

	rows, err := s.conn.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *sqlSession) Release() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		logging.New(s.executor.tag).Warnf("Error releasing connection: %v", err)
	}
	s.conn = nil
}

// scanRows reads every row into a column-keyed map. Byte slices are
// returned as strings for JSON serialization.
func scanRows(rows *sql.Rows) ([]domain.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := []domain.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}
