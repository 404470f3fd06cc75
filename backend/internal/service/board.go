package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/shared/domain"
)

// to mock service in tests
type BoardService interface {
	CreateThread(ctx context.Context, board domain.BoardName, text domain.Text, password domain.Password) (domain.Thread, error)
	CreateReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, text domain.Text, password domain.Password) (domain.Thread, error)
	ListRecentThreads(ctx context.Context, board domain.BoardName) ([]domain.Thread, error)
	GetThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (domain.Thread, error)
	ReportThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) error
	ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) error
	DeleteThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, password domain.Password) (domain.DeleteResult, error)
	DeleteReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId, password domain.Password) (domain.DeleteResult, error)
}

// BoardStorage never returns password hashes or report flags inside threads and replies.
// Unknown threads and replies are reported as 404 errors.
type BoardStorage interface {
	InsertThread(ctx context.Context, creationData domain.ThreadCreationData) error
	// AppendReply adds the reply and sets the thread's bumped_on to its created_on atomically
	AppendReply(ctx context.Context, creationData domain.ReplyCreationData) error
	// ListThreads returns up to limit threads by bumped_on desc, each with all replies in creation order
	ListThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error)
	GetThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.Thread, error)
	ReportThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) error
	ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) error
	ThreadPasswordHash(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.PasswordHash, error)
	ReplyPasswordHash(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) (domain.PasswordHash, error)
	// DeleteThread removes the thread only while its stored hash still equals hash
	DeleteThread(ctx context.Context, board domain.BoardName, id domain.ThreadId, hash domain.PasswordHash) error
	// TombstoneReply replaces the reply text only while its stored hash still equals hash
	TombstoneReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId, hash domain.PasswordHash, text domain.Text) error
}

type BoardValidator interface {
	BoardName(name string) error
	Text(text string) error
	Password(password string) error
}

type Options struct {
	ThreadsPerPage int
	NLastReplies   int
	BcryptCost     int
}

type Board struct {
	storage   BoardStorage
	validator BoardValidator
	opts      Options
	now       func() time.Time
	newId     func() string
}

func NewBoard(storage BoardStorage, validator BoardValidator, opts Options) *Board {
	return &Board{
		storage:   storage,
		validator: validator,
		opts:      opts,
		now:       now,
		newId:     uuid.NewString,
	}
}

// timestamps are kept at millisecond precision so every backend returns exactly what was written
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
