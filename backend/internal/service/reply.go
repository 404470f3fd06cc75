package service

import (
	"context"

	"github.com/itchan-dev/anonboard/shared/domain"
)

// CreateReply appends a reply and bumps the thread, returning the thread with all replies.
func (b *Board) CreateReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, text domain.Text, password domain.Password) (thread domain.Thread, err error) {
	defer func() { observe("create_reply", err) }()

	if err := b.validator.BoardName(board); err != nil {
		return domain.Thread{}, err
	}
	if err := b.validator.Text(text); err != nil {
		return domain.Thread{}, err
	}
	if err := b.validator.Password(password); err != nil {
		return domain.Thread{}, err
	}
	threadId, err = canonicalId(threadId, "Thread")
	if err != nil {
		return domain.Thread{}, err
	}

	hash, err := b.hashPassword(password)
	if err != nil {
		return domain.Thread{}, err
	}

	creationData := domain.ReplyCreationData{
		Id:           b.newId(),
		Board:        board,
		ThreadId:     threadId,
		Text:         text,
		PasswordHash: hash,
		CreatedOn:    b.now(),
	}
	if err := b.storage.AppendReply(ctx, creationData); err != nil {
		return domain.Thread{}, err
	}

	return b.getThread(ctx, board, threadId)
}

func (b *Board) ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) (err error) {
	defer func() { observe("report_reply", err) }()

	if err := b.validator.BoardName(board); err != nil {
		return err
	}
	if threadId, err = canonicalId(threadId, "Thread"); err != nil {
		return err
	}
	if replyId, err = canonicalId(replyId, "Reply"); err != nil {
		return err
	}
	return b.storage.ReportReply(ctx, board, threadId, replyId)
}

// DeleteReply replaces the reply text with domain.DeletedText. The reply keeps its place in the thread.
func (b *Board) DeleteReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId, password domain.Password) (result domain.DeleteResult, err error) {
	defer func() { observeDelete("delete_reply", result, err) }()

	if err := b.validator.BoardName(board); err != nil {
		return 0, err
	}
	if err := b.validator.Password(password); err != nil {
		return 0, err
	}
	if threadId, err = canonicalId(threadId, "Thread"); err != nil {
		return 0, err
	}
	if replyId, err = canonicalId(replyId, "Reply"); err != nil {
		return 0, err
	}

	hash, err := b.storage.ReplyPasswordHash(ctx, board, threadId, replyId)
	if err != nil {
		return 0, err
	}
	ok, err := checkPassword(hash, password)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.IncorrectPassword, nil
	}

	if err := b.storage.TombstoneReply(ctx, board, threadId, replyId, hash, domain.DeletedText); err != nil {
		return 0, err
	}
	return domain.Deleted, nil
}
