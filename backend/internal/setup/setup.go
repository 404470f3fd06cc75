package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/anonboard/backend/internal/handler"
	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/backend/internal/storage/mongo"
	"github.com/itchan-dev/anonboard/backend/internal/storage/pg"
	"github.com/itchan-dev/anonboard/backend/internal/storage/sqlite"
	"github.com/itchan-dev/anonboard/backend/internal/utils"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/markup"
	"github.com/itchan-dev/anonboard/shared/middleware/ratelimiter"
)

// Storage is implemented by every backend in backend/internal/storage
type Storage interface {
	service.BoardStorage
	handler.HealthChecker
	Close() error
}

// Limiters are per client IP, shared by the thread and reply routes
type Limiters struct {
	Create *ratelimiter.ClientRateLimiter
	Report *ratelimiter.ClientRateLimiter
	Delete *ratelimiter.ClientRateLimiter
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config   *config.Config
	Storage  Storage
	Handler  *handler.Handler
	Limiters Limiters
}

// SetupDependencies connects to the configured storage and builds everything on top of it.
// The store is ready to serve once this returns.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	board := service.NewBoard(storage, utils.New(), service.Options{
		ThreadsPerPage: cfg.Public.ThreadsPerPage,
		NLastReplies:   cfg.Public.NLastReplies,
		BcryptCost:     cfg.Public.BcryptCost,
	})
	h := handler.New(board, markup.New(), storage, cfg)

	limits := cfg.Public.RateLimits
	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Handler: h,
		Limiters: Limiters{
			Create: ratelimiter.PerMinute(limits.CreatePerMinute),
			Report: ratelimiter.PerMinute(limits.ReportPerMinute),
			Delete: ratelimiter.PerMinute(limits.DeletePerMinute),
		},
	}, nil
}

// OpenStorage opens the backend named by storage.driver
func OpenStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	var (
		storage Storage
		err     error
	)
	switch driver := cfg.Public.Storage.Driver; driver {
	case config.DriverPostgres:
		storage, err = pg.New(ctx, cfg.Private.Pg)
	case config.DriverMongo:
		storage, err = mongo.New(ctx, cfg.Private.Mongo.URI, cfg.Public.Storage.MongoDatabase)
	case config.DriverSqlite:
		storage, err = sqlite.New(ctx, cfg.Public.Storage.SqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return storage, nil
}

// Close stops the limiters' cleanup timers and closes the storage connection.
func (d *Dependencies) Close() {
	d.Limiters.Create.Stop()
	d.Limiters.Report.Stop()
	d.Limiters.Delete.Stop()
	if err := d.Storage.Close(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
