package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/storage/sqldb"
)

func threadNotFound() error {
	return internal_errors.NotFound("Thread not found")
}

func (s *Storage) InsertThread(ctx context.Context, creationData domain.ThreadCreationData) error {
	createdOn := toMillis(creationData.CreatedOn)
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO threads (board, id, text, delete_password, created_on, bumped_on)
        VALUES (?, ?, ?, ?, ?, ?)
    `, creationData.Board, creationData.Id, creationData.Text, creationData.PasswordHash, createdOn, createdOn)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	threads := []domain.Thread{}
	err := sqldb.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
            SELECT id, text, created_on, bumped_on
            FROM threads
            WHERE board = ?
            ORDER BY bumped_on DESC, id DESC
            LIMIT ?
        `, board, limit)
		if err != nil {
			return fmt.Errorf("failed to query threads: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			thread, err := scanThread(rows.Scan, board)
			if err != nil {
				return err
			}
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
	var thread domain.Thread
	err := sqldb.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		var err error
		row := tx.QueryRowContext(ctx, `
            SELECT id, text, created_on, bumped_on
            FROM threads
            WHERE board = ? AND id = ?
        `, board, id)
		thread, err = scanThread(row.Scan, board)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return threadNotFound()
			}
			return err
		}

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
	res, err := s.db.ExecContext(ctx, "UPDATE threads SET reported = 1 WHERE board = ? AND id = ?", board, id)
	if err != nil {
		return fmt.Errorf("failed to report thread: %w", err)
	}
	return sqldb.RequireAffected(res, threadNotFound())
}

func (s *Storage) ThreadPasswordHash(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.PasswordHash, error) {
	var hash domain.PasswordHash
	err := s.db.QueryRowContext(ctx, "SELECT delete_password FROM threads WHERE board = ? AND id = ?", board, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", threadNotFound()
		}
		return "", fmt.Errorf("failed to fetch thread password: %w", err)
	}
	return hash, nil
}

func (s *Storage) DeleteThread(ctx context.Context, board domain.BoardName, id domain.ThreadId, hash domain.PasswordHash) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM threads WHERE board = ? AND id = ? AND delete_password = ?", board, id, hash)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return sqldb.RequireAffected(res, threadNotFound())
}

func scanThread(scan func(dest ...any) error, board domain.BoardName) (domain.Thread, error) {
	thread := domain.Thread{Board: board}
	var createdOn, bumpedOn int64
	if err := scan(&thread.Id, &thread.Text, &createdOn, &bumpedOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, err
		}
		return domain.Thread{}, fmt.Errorf("failed to scan thread: %w", err)
	}
	thread.CreatedOn = fromMillis(createdOn)
	thread.BumpedOn = fromMillis(bumpedOn)
	return thread, nil
}

func repliesByThread(ctx context.Context, q sqldb.Querier, board domain.BoardName, threadIds []string) (map[string][]domain.Reply, error) {
	result := make(map[string][]domain.Reply, len(threadIds))
	args := []any{board}
	for _, id := range threadIds {
		result[id] = []domain.Reply{}
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(threadIds)), ",")

	rows, err := q.QueryContext(ctx, `
        SELECT thread_id, id, text, created_on
        FROM replies
        WHERE board = ? AND thread_id IN (`+placeholders+`)
        ORDER BY thread_id, created_on, id
    `, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var threadId string
		var reply domain.Reply
		var createdOn int64
		if err := rows.Scan(&threadId, &reply.Id, &reply.Text, &createdOn); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		reply.CreatedOn = fromMillis(createdOn)
		result[threadId] = append(result[threadId], reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
