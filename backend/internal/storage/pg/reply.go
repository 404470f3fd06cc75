package pg

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

// AppendReply bumps the thread and inserts the reply in one statement.
// The insert selects from the bumped row, so a missing thread inserts nothing.
func (s *Storage) AppendReply(ctx context.Context, creationData domain.ReplyCreationData) error {
	res, err := s.db.ExecContext(ctx, `
        WITH bumped AS (
            UPDATE threads SET bumped_on = GREATEST(bumped_on, $4::timestamptz)
            WHERE board = $1 AND id = $2
            RETURNING board, id
        )
        INSERT INTO replies (board, thread_id, id, text, delete_password, created_on)
        SELECT board, id, $3::uuid, $5::text, $6::text, $4::timestamptz FROM bumped
    `, creationData.Board, creationData.ThreadId, creationData.Id, creationData.CreatedOn, creationData.Text, creationData.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to append reply: %w", err)
	}
	return sqldb.RequireAffected(res, threadNotFound())
}

func (s *Storage) ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE replies SET reported = TRUE
        WHERE board = $1 AND thread_id = $2 AND id = $3
    `, board, threadId, replyId)
	if err != nil {
		return fmt.Errorf("failed to report reply: %w", err)
	}
	return sqldb.RequireAffected(res, replyNotFound())
}

func (s *Storage) ReplyPasswordHash(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) (domain.PasswordHash, error) {
	var hash domain.PasswordHash
	err := s.db.QueryRowContext(ctx, `
        SELECT delete_password FROM replies
        WHERE board = $1 AND thread_id = $2 AND id = $3
    `, board, threadId, replyId).Scan(&hash)
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
        UPDATE replies SET text = $5
        WHERE board = $1 AND thread_id = $2 AND id = $3 AND delete_password = $4
    `, board, threadId, replyId, hash, text)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	return sqldb.RequireAffected(res, replyNotFound())
}
