// Package storagetest is a behaviour suite every BoardStorage backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// At returns a fixed instant shifted by sec seconds.
func At(sec int) time.Time {
	return base.Add(time.Duration(sec) * time.Second)
}

// NewBoard returns a board name unused by other tests, so suites can share one database.
func NewBoard() domain.BoardName {
	return "t" + uuid.NewString()[:8]
}

func InsertThread(t *testing.T, s service.BoardStorage, board domain.BoardName, text string, hash domain.PasswordHash, createdOn time.Time) domain.ThreadId {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, s.InsertThread(context.Background(), domain.ThreadCreationData{
		Id: id, Board: board, Text: text, PasswordHash: hash, CreatedOn: createdOn,
	}))
	return id
}

func AppendReply(t *testing.T, s service.BoardStorage, board domain.BoardName, threadId domain.ThreadId, text string, hash domain.PasswordHash, createdOn time.Time) domain.ReplyId {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, s.AppendReply(context.Background(), domain.ReplyCreationData{
		Id: id, Board: board, ThreadId: threadId, Text: text, PasswordHash: hash, CreatedOn: createdOn,
	}))
	return id
}

func RequireNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err), "expected not found, got %v", err)
}

// Run exercises s through the BoardStorage interface only.
func Run(t *testing.T, s service.BoardStorage) {
	ctx := context.Background()

	t.Run("InsertAndGet", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "Test issue #1", "h1", At(0))

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		assert.Equal(t, id, thread.Id)
		assert.Equal(t, board, thread.Board)
		assert.Equal(t, "Test issue #1", thread.Text)
		assert.Equal(t, At(0), thread.CreatedOn)
		assert.Equal(t, At(0), thread.BumpedOn)
		assert.Empty(t, thread.Replies)
	})

	t.Run("MillisecondsRoundTrip", func(t *testing.T) {
		board := NewBoard()
		createdOn := At(0).Add(123 * time.Millisecond)
		id := InsertThread(t, s, board, "text", "h", createdOn)

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		assert.Equal(t, createdOn, thread.CreatedOn)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "text", "h", At(0))

		_, err := s.GetThread(ctx, board, uuid.NewString())
		RequireNotFound(t, err)

		_, err = s.GetThread(ctx, NewBoard(), id)
		RequireNotFound(t, err)
	})

	t.Run("AppendReplyBumps", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))
		r1 := AppendReply(t, s, board, id, "one", "rh1", At(5))
		r2 := AppendReply(t, s, board, id, "two", "rh2", At(9))

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		assert.Equal(t, At(0), thread.CreatedOn)
		assert.Equal(t, At(9), thread.BumpedOn)
		require.Len(t, thread.Replies, 2)
		assert.Equal(t, domain.Reply{Id: r1, Text: "one", CreatedOn: At(5)}, thread.Replies[0])
		assert.Equal(t, domain.Reply{Id: r2, Text: "two", CreatedOn: At(9)}, thread.Replies[1])
	})

	t.Run("AppendReplyNeverMovesBumpBackwards", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))
		AppendReply(t, s, board, id, "late", "h", At(10))
		AppendReply(t, s, board, id, "early", "h", At(5))

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		assert.Equal(t, At(10), thread.BumpedOn)
		assert.Equal(t, "early", thread.Replies[0].Text, "replies come back in creation order")
	})

	t.Run("AppendReplyUnknownThread", func(t *testing.T) {
		board := NewBoard()
		err := s.AppendReply(ctx, domain.ReplyCreationData{
			Id: uuid.NewString(), Board: board, ThreadId: uuid.NewString(), Text: "x", PasswordHash: "h", CreatedOn: At(0),
		})
		RequireNotFound(t, err)

		threads, err := s.ListThreads(ctx, board, 10)
		require.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("ConcurrentAppends", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := s.AppendReply(ctx, domain.ReplyCreationData{
					Id: uuid.NewString(), Board: board, ThreadId: id, Text: fmt.Sprint(i), PasswordHash: "h", CreatedOn: At(i + 1),
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		assert.Len(t, thread.Replies, 10)
		assert.Equal(t, At(10), thread.BumpedOn)
	})

	t.Run("ListThreads", func(t *testing.T) {
		board := NewBoard()
		var ids []domain.ThreadId
		for i := 0; i < 5; i++ {
			ids = append(ids, InsertThread(t, s, board, fmt.Sprintf("thread %d", i), "h", At(i)))
		}
		// bump the oldest thread to the top
		AppendReply(t, s, board, ids[0], "a", "h", At(100))
		AppendReply(t, s, board, ids[0], "b", "h", At(101))
		AppendReply(t, s, board, ids[2], "c", "h", At(50))
		InsertThread(t, s, NewBoard(), "elsewhere", "h", At(1000))

		threads, err := s.ListThreads(ctx, board, 3)
		require.NoError(t, err)
		require.Len(t, threads, 3)
		assert.Equal(t, ids[0], threads[0].Id)
		assert.Equal(t, ids[2], threads[1].Id)
		assert.Equal(t, ids[4], threads[2].Id)
		assert.Equal(t, "thread 4", threads[2].Text)

		require.Len(t, threads[0].Replies, 2)
		assert.Equal(t, "a", threads[0].Replies[0].Text)
		assert.Equal(t, "b", threads[0].Replies[1].Text)
		require.Len(t, threads[1].Replies, 1)
		assert.Equal(t, "c", threads[1].Replies[0].Text)
		assert.Empty(t, threads[2].Replies)
	})

	t.Run("ListThreadsEmptyBoard", func(t *testing.T) {
		threads, err := s.ListThreads(ctx, NewBoard(), 10)
		require.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("ReportThread", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))

		require.NoError(t, s.ReportThread(ctx, board, id))
		require.NoError(t, s.ReportThread(ctx, board, id), "reporting twice is fine")
		RequireNotFound(t, s.ReportThread(ctx, board, uuid.NewString()))

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		assert.Equal(t, At(0), thread.BumpedOn, "reporting does not bump")
	})

	t.Run("ReportReply", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))
		r := AppendReply(t, s, board, id, "one", "h", At(1))
		other := InsertThread(t, s, board, "other", "h", At(2))

		require.NoError(t, s.ReportReply(ctx, board, id, r))
		RequireNotFound(t, s.ReportReply(ctx, board, id, uuid.NewString()))
		RequireNotFound(t, s.ReportReply(ctx, board, other, r))
		RequireNotFound(t, s.ReportReply(ctx, board, uuid.NewString(), r))
	})

	t.Run("PasswordHashes", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "thread-hash", At(0))
		r := AppendReply(t, s, board, id, "one", "reply-hash", At(1))

		hash, err := s.ThreadPasswordHash(ctx, board, id)
		require.NoError(t, err)
		assert.Equal(t, "thread-hash", hash)

		hash, err = s.ReplyPasswordHash(ctx, board, id, r)
		require.NoError(t, err)
		assert.Equal(t, "reply-hash", hash)

		_, err = s.ThreadPasswordHash(ctx, board, uuid.NewString())
		RequireNotFound(t, err)
		_, err = s.ReplyPasswordHash(ctx, board, id, uuid.NewString())
		RequireNotFound(t, err)
		_, err = s.ReplyPasswordHash(ctx, board, uuid.NewString(), r)
		RequireNotFound(t, err)
	})

	t.Run("DeleteThread", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))
		AppendReply(t, s, board, id, "one", "rh", At(1))

		RequireNotFound(t, s.DeleteThread(ctx, board, id, "stale"))
		_, err := s.GetThread(ctx, board, id)
		require.NoError(t, err, "mismatched hash leaves thread in place")

		require.NoError(t, s.DeleteThread(ctx, board, id, "h"))
		_, err = s.GetThread(ctx, board, id)
		RequireNotFound(t, err)
		RequireNotFound(t, s.DeleteThread(ctx, board, id, "h"))

		err = s.AppendReply(ctx, domain.ReplyCreationData{
			Id: uuid.NewString(), Board: board, ThreadId: id, Text: "x", PasswordHash: "h", CreatedOn: At(2),
		})
		RequireNotFound(t, err)
	})

	t.Run("TombstoneReply", func(t *testing.T) {
		board := NewBoard()
		id := InsertThread(t, s, board, "op", "h", At(0))
		r1 := AppendReply(t, s, board, id, "one", "rh1", At(1))
		r2 := AppendReply(t, s, board, id, "two", "rh2", At(2))

		RequireNotFound(t, s.TombstoneReply(ctx, board, id, r1, "rh2", domain.DeletedText))
		RequireNotFound(t, s.TombstoneReply(ctx, board, id, uuid.NewString(), "rh1", domain.DeletedText))
		require.NoError(t, s.TombstoneReply(ctx, board, id, r1, "rh1", domain.DeletedText))

		thread, err := s.GetThread(ctx, board, id)
		require.NoError(t, err)
		require.Len(t, thread.Replies, 2)
		assert.Equal(t, domain.Reply{Id: r1, Text: domain.DeletedText, CreatedOn: At(1)}, thread.Replies[0])
		assert.Equal(t, domain.Reply{Id: r2, Text: "two", CreatedOn: At(2)}, thread.Replies[1])
		assert.Equal(t, At(2), thread.BumpedOn, "tombstoning does not bump")

		hash, err := s.ReplyPasswordHash(ctx, board, id, r1)
		require.NoError(t, err)
		assert.Equal(t, "rh1", hash, "hash survives the tombstone")
	})
}
