// Package mongo keeps one collection per board with replies embedded in their thread document.
package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ service.BoardStorage = (*Storage)(nil)

type Storage struct {
	client  *mongo.Client
	db      *mongo.Database
	indexed sync.Map // board name -> struct{}
}

// New connects to uri and verifies the primary is reachable.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	logger.Log.Info("connecting to mongo", "database", database)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	logger.Log.Info("connected to mongo")
	return &Storage{client: client, db: client.Database(database)}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func collectionName(board domain.BoardName) string {
	return "board-" + board
}

func (s *Storage) collection(board domain.BoardName) *mongo.Collection {
	return s.db.Collection(collectionName(board))
}

// ensureIndexes creates the listing index the first time a board is written to.
func (s *Storage) ensureIndexes(ctx context.Context, board domain.BoardName) error {
	if _, ok := s.indexed.Load(board); ok {
		return nil
	}
	_, err := s.collection(board).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "bumped_on", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	s.indexed.Store(board, struct{}{})
	return nil
}
