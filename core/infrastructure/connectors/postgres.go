package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// PostgresConnector implements the Connector interface for PostgreSQL using pgx/v5
type PostgresConnector struct {
	pool *pgxpool.Pool
}

// NewPostgresConnector creates a new PostgreSQL connector using pgx/v5
func NewPostgresConnector(connectionString string, options map[string]string) (interfaces.Connector, error) {
	if len(options) > 0 {
		if strings.HasPrefix(connectionString, "postgres://") || strings.HasPrefix(connectionString, "postgresql://") {
			merged, err := appendURLOptions(connectionString, options)
			if err != nil {
				return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
			}
			connectionString = merged
		} else {
			connectionString = strings.TrimSpace(connectionString + " " + strings.Join(optionPairs(options), " "))
		}
	}

	log := logging.New("connector:postgres")
	log.Debugf("Opening PostgreSQL connection pool (pgx/v5)")

	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	log.Debugf("Testing connection with ping")
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	log.Debugf("PostgreSQL connection pool opened successfully")
	return &PostgresConnector{pool: pool}, nil
}

// NewSession opens a session that acquires one pooled connection on first use
func (p *PostgresConnector) NewSession() interfaces.Session {
	return &postgresSession{pool: p.pool}
}

// Ping verifies the database is reachable
func (p *PostgresConnector) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool
func (p *PostgresConnector) Close() error {
	if p.pool != nil {
		log := logging.New("connector:postgres")
		log.Debugf("Closing PostgreSQL connection pool")
		p.pool.Close()
		log.Debugf("PostgreSQL connection pool closed")
	}
	return nil
}

type postgresSession struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
}

// Execute binds expression as a $n parameterized statement and runs it
func (s *postgresSession) Execute(ctx context.Context, expression string, properties map[string]any, caller *domain.Caller) ([]domain.Row, error) {
	statement, args, err := BindSQL(expression, properties, caller, PlaceholderDollar)
	if err != nil {
		return nil, err
	}

	if s.conn == nil {
		conn, err := s.pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire connection: %w", err)
		}
		s.conn = conn
	}

	rows, err := s.conn.Query(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columns[i] = fd.Name
	}

	results := []domain.Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to get row values: %w", err)
		}

		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col] = postgresValue(values[i])
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// Release returns the connection to the pool
func (s *postgresSession) Release() {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
}

// postgresValue converts pgx values without a natural JSON form
func postgresValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		if f, err := val.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return nil
	default:
		return v
	}
}
