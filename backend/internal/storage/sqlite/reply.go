package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/storage/sqldb"
)

func replyNotFound() error {
	return internal_errors.NotFound("Reply not found")
}

func (s *Storage) AppendReply(ctx context.Context, creationData domain.ReplyCreationData) error {
	createdOn := toMillis(creationData.CreatedOn)
	return sqldb.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE threads SET bumped_on = MAX(bumped_on, ?)
            WHERE board = ? AND id = ?
        `, createdOn, creationData.Board, creationData.ThreadId)
		if err != nil {
			return fmt.Errorf("failed to bump thread: %w", err)
		}
		if err := sqldb.RequireAffected(res, threadNotFound()); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO replies (board, thread_id, id, text, delete_password, created_on)
            VALUES (?, ?, ?, ?, ?, ?)
        `, creationData.Board, creationData.ThreadId, creationData.Id, creationData.Text, creationData.PasswordHash, createdOn)
		if err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		return nil
	})
}

func (s *Storage) ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE replies SET reported = 1 WHERE board = ? AND thread_id = ? AND id = ?", board, threadId, replyId)
	if err != nil {
		return fmt.Errorf("failed to report reply: %w", err)
	}
	return sqldb.RequireAffected(res, replyNotFound())
}

func (s *Storage) ReplyPasswordHash(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) (domain.PasswordHash, error) {
	var hash domain.PasswordHash
	err := s.db.QueryRowContext(ctx,
		"SELECT delete_password FROM replies WHERE board = ? AND thread_id = ? AND id = ?", board, threadId, replyId).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", replyNotFound()
		}
		return "", fmt.Errorf("failed to fetch reply password: %w", err)
	}
	return hash, nil
}

func (s *Storage) TombstoneReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId, hash domain.PasswordHash, text domain.Text) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE replies SET text = ?
        WHERE board = ? AND thread_id = ? AND id = ? AND delete_password = ?
    `, text, board, threadId, replyId, hash)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	return sqldb.RequireAffected(res, replyNotFound())
}
