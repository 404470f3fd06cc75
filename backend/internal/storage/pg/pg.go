package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/storage/sqldb"
	_ "github.com/lib/pq"
)

//go:embed migrations/init.sql
var schema string

var _ service.BoardStorage = (*Storage)(nil)

type Storage struct {
	db *sql.DB
}

// New connects to postgres and creates the schema if it is missing.
func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Dbname)
	db, err := sqldb.Open(ctx, "postgres", sqldb.PostgresDSN(cfg), sqldb.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Log.Info("connected to postgres")
	return &Storage{db: db}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
