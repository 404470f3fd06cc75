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

func replyNotFound() error {
	return internal_errors.NotFound("Reply not found")
}

func replyFilter(threadId domain.ThreadId, replyId domain.ReplyId) bson.D {
	return bson.D{{Key: "_id", Value: threadId}, {Key: "replies._id", Value: replyId}}
}

func byReplyId(replyId domain.ReplyId) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.D{{Key: "r._id", Value: replyId}}},
	})
}

// AppendReply pushes the reply and bumps the thread in a single document update.
// The array stays sorted by creation time even when appends arrive out of order.
func (s *Storage) AppendReply(ctx context.Context, creationData domain.ReplyCreationData) error {
	reply := replyDocument{
		Id:             creationData.Id,
		Text:           creationData.Text,
		DeletePassword: creationData.PasswordHash,
		CreatedOn:      creationData.CreatedOn,
	}
	res, err := s.collection(creationData.Board).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: creationData.ThreadId}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "replies", Value: bson.D{
				{Key: "$each", Value: []replyDocument{reply}},
				{Key: "$sort", Value: bson.D{{Key: "created_on", Value: 1}, {Key: "_id", Value: 1}}},
			}}}},
			{Key: "$max", Value: bson.D{{Key: "bumped_on", Value: creationData.CreatedOn}}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append reply: %w", err)
	}
	if res.MatchedCount == 0 {
		return threadNotFound()
	}
	return nil
}

func (s *Storage) ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) error {
	res, err := s.collection(board).UpdateOne(ctx,
		replyFilter(threadId, replyId),
		bson.D{{Key: "$set", Value: bson.D{{Key: "replies.$[r].reported", Value: true}}}},
		byReplyId(replyId),
	)
	if err != nil {
		return fmt.Errorf("failed to report reply: %w", err)
	}
	if res.MatchedCount == 0 {
		return replyNotFound()
	}
	return nil
}

func (s *Storage) ReplyPasswordHash(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) (domain.PasswordHash, error) {
	var doc struct {
		Replies []struct {
			DeletePassword string `bson:"delete_password"`
		} `bson:"replies"`
	}
	// the positional projection returns only the matched reply
	opts := options.FindOne().SetProjection(bson.D{{Key: "replies.$", Value: 1}})
	err := s.collection(board).FindOne(ctx, replyFilter(threadId, replyId), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", replyNotFound()
		}
		return "", fmt.Errorf("failed to fetch reply password: %w", err)
	}
	if len(doc.Replies) == 0 {
		return "", replyNotFound()
	}
	return doc.Replies[0].DeletePassword, nil
}

func (s *Storage) TombstoneReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId, hash domain.PasswordHash, text domain.Text) error {
	filter := bson.D{
		{Key: "_id", Value: threadId},
		{Key: "replies", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "_id", Value: replyId},
			{Key: "delete_password", Value: hash},
		}}}},
	}
	res, err := s.collection(board).UpdateOne(ctx,
		filter,
		bson.D{{Key: "$set", Value: bson.D{{Key: "replies.$[r].text", Value: text}}}},
		byReplyId(replyId),
	)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	if res.MatchedCount == 0 {
		return replyNotFound()
	}
	return nil
}
