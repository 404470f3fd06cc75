package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func threadNotFound() error {
	return internal_errors.NotFound("Thread not found")
}

func (s *Storage) InsertThread(ctx context.Context, creationData domain.ThreadCreationData) error {
	if err := s.ensureIndexes(ctx, creationData.Board); err != nil {
		return err
	}
	_, err := s.collection(creationData.Board).InsertOne(ctx, threadDocument{
		Id:             creationData.Id,
		Text:           creationData.Text,
		DeletePassword: creationData.PasswordHash,
		CreatedOn:      creationData.CreatedOn,
		BumpedOn:       creationData.CreatedOn,
		Replies:        []replyDocument{},
	})
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "bumped_on", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(publicProjection)
	cursor, err := s.collection(board).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}

	var views []threadView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode threads: %w", err)
	}
	threads := make([]domain.Thread, 0, len(views))
	for _, v := range views {
		threads = append(threads, v.toDomain(board))
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.Thread, error) {
	var view threadView
	err := s.collection(board).
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}, options.FindOne().SetProjection(publicProjection)).
		Decode(&view)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Thread{}, threadNotFound()
		}
		return domain.Thread{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return view.toDomain(board), nil
}

func (s *Storage) ReportThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) error {
	res, err := s.collection(board).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "reported", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to report thread: %w", err)
	}
	if res.MatchedCount == 0 {
		return threadNotFound()
	}
	return nil
}

func (s *Storage) ThreadPasswordHash(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.PasswordHash, error) {
	var doc struct {
		DeletePassword string `bson:"delete_password"`
	}
	err := s.collection(board).
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}, options.FindOne().SetProjection(bson.D{{Key: "delete_password", Value: 1}})).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", threadNotFound()
		}
		return "", fmt.Errorf("failed to fetch thread password: %w", err)
	}
	return doc.DeletePassword, nil
}

// DeleteThread removes the document, its embedded replies go with it
func (s *Storage) DeleteThread(ctx context.Context, board domain.BoardName, id domain.ThreadId, hash domain.PasswordHash) error {
	res, err := s.collection(board).DeleteOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "delete_password", Value: hash},
	})
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if res.DeletedCount == 0 {
		return threadNotFound()
	}
	return nil
}
