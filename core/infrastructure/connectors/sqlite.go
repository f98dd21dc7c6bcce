package connectors

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// NewSQLiteConnector opens a SQLite database file. Options are appended as
// DSN parameters, e.g. _pragma=busy_timeout(5000).
func NewSQLiteConnector(connectionString string, options map[string]string) (interfaces.Connector, error) {
	dsn := strings.TrimPrefix(connectionString, "sqlite://")
	if len(options) > 0 {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + strings.Join(optionPairs(options), "&")
	}

	log := logging.New("connector:sqlite")
	log.Debugf("Opening SQLite database")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	log.Debugf("SQLite database opened successfully")
	return &sqlExecutor{db: db, style: PlaceholderQuestion, tag: "connector:sqlite"}, nil
}
