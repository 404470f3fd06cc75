package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/storage/sqldb"
	"github.com/lib/pq"
)

func threadNotFound() error {
	return internal_errors.NotFound("Thread not found")
}

// snapshot makes a thread and its replies come from the same point in time
var snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func (s *Storage) InsertThread(ctx context.Context, creationData domain.ThreadCreationData) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO threads (board, id, text, delete_password, created_on, bumped_on)
        VALUES ($1, $2, $3, $4, $5, $5)
    `, creationData.Board, creationData.Id, creationData.Text, creationData.PasswordHash, creationData.CreatedOn)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	threads := []domain.Thread{}
	err := sqldb.WithTx(ctx, s.db, snapshot, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
            SELECT id, text, created_on, bumped_on
            FROM threads
            WHERE board = $1
            ORDER BY bumped_on DESC, id DESC
            LIMIT $2
        `, board, limit)
		if err != nil {
			return fmt.Errorf("failed to query threads: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			thread := domain.Thread{Board: board}
			if err := rows.Scan(&thread.Id, &thread.Text, &thread.CreatedOn, &thread.BumpedOn); err != nil {
				return fmt.Errorf("failed to scan thread: %w", err)
			}
			normalize(&thread)
			threads = append(threads, thread)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows iteration error: %w", err)
		}
		if len(threads) == 0 {
			return nil
		}

		ids := make([]string, len(threads))
		for i, t := range threads {
			ids[i] = t.Id
		}
		replies, err := repliesByThread(ctx, tx, board, ids)
		if err != nil {
			return err
		}
		for i := range threads {
			threads[i].Replies = replies[threads[i].Id]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.Thread, error) {
	thread := domain.Thread{Board: board}
	err := sqldb.WithTx(ctx, s.db, snapshot, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
            SELECT id, text, created_on, bumped_on
            FROM threads
            WHERE board = $1 AND id = $2
        `, board, id).Scan(&thread.Id, &thread.Text, &thread.CreatedOn, &thread.BumpedOn)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return threadNotFound()
			}
			return fmt.Errorf("failed to fetch thread: %w", err)
		}
		normalize(&thread)

		replies, err := repliesByThread(ctx, tx, board, []string{thread.Id})
		if err != nil {
			return err
		}
		thread.Replies = replies[thread.Id]
		return nil
	})
	if err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}

func (s *Storage) ReportThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE threads SET reported = TRUE
        WHERE board = $1 AND id = $2
    `, board, id)
	if err != nil {
		return fmt.Errorf("failed to report thread: %w", err)
	}
	return sqldb.RequireAffected(res, threadNotFound())
}

func (s *Storage) ThreadPasswordHash(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.PasswordHash, error) {
	var hash domain.PasswordHash
	err := s.db.QueryRowContext(ctx, `
        SELECT delete_password FROM threads
        WHERE board = $1 AND id = $2
    `, board, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", threadNotFound()
		}
		return "", fmt.Errorf("failed to fetch thread password: %w", err)
	}
	return hash, nil
}

// DeleteThread removes the thread and, by cascade, its replies
func (s *Storage) DeleteThread(ctx context.Context, board domain.BoardName, id domain.ThreadId, hash domain.PasswordHash) error {
	res, err := s.db.ExecContext(ctx, `
        DELETE FROM threads
        WHERE board = $1 AND id = $2 AND delete_password = $3
    `, board, id, hash)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return sqldb.RequireAffected(res, threadNotFound())
}

// repliesByThread returns replies of the given threads in creation order, keyed by thread id.
// Threads without replies get an empty slice.
func repliesByThread(ctx context.Context, q sqldb.Querier, board domain.BoardName, threadIds []string) (map[string][]domain.Reply, error) {
	result := make(map[string][]domain.Reply, len(threadIds))
	for _, id := range threadIds {
		result[id] = []domain.Reply{}
	}

	rows, err := q.QueryContext(ctx, `
        SELECT thread_id, id, text, created_on
        FROM replies
        WHERE board = $1 AND thread_id = ANY($2::uuid[])
        ORDER BY thread_id, created_on, id
    `, board, pq.Array(threadIds))
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var threadId string
		var reply domain.Reply
		if err := rows.Scan(&threadId, &reply.Id, &reply.Text, &reply.CreatedOn); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		reply.CreatedOn = reply.CreatedOn.UTC()
		result[threadId] = append(result[threadId], reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

// lib/pq returns timestamptz in the session time zone
func normalize(thread *domain.Thread) {
	thread.CreatedOn = thread.CreatedOn.UTC()
	thread.BumpedOn = thread.BumpedOn.UTC()
}
