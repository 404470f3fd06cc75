// Package sqlite stores boards in a single SQLite file, or in memory for development.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/storage/sqldb"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

var _ service.BoardStorage = (*Storage)(nil)

type Storage struct {
	db *sql.DB
}

// New opens the database at path, ":memory:" keeps everything in process.
func New(ctx context.Context, path string) (*Storage, error) {
	logger.Log.Info("opening sqlite database", "path", path)
	db, err := sqldb.Open(ctx, "sqlite3", dsn(path), sqldb.SingleWriterConnectionConfig())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
