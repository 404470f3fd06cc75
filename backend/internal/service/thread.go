package service

import (
	"context"
	"slices"
	"strings"

	"github.com/itchan-dev/anonboard/shared/domain"
)

func (b *Board) CreateThread(ctx context.Context, board domain.BoardName, text domain.Text, password domain.Password) (thread domain.Thread, err error) {
	defer func() { observe("create_thread", err) }()

	if err := b.validator.BoardName(board); err != nil {
		return domain.Thread{}, err
	}
	if err := b.validator.Text(text); err != nil {
		return domain.Thread{}, err
	}
	if err := b.validator.Password(password); err != nil {
		return domain.Thread{}, err
	}

	hash, err := b.hashPassword(password)
	if err != nil {
		return domain.Thread{}, err
	}

	creationData := domain.ThreadCreationData{
		Id:           b.newId(),
		Board:        board,
		Text:         text,
		PasswordHash: hash,
		CreatedOn:    b.now(),
	}
	if err := b.storage.InsertThread(ctx, creationData); err != nil {
		return domain.Thread{}, err
	}

	return domain.Thread{
		Id:        creationData.Id,
		Board:     board,
		Text:      text,
		CreatedOn: creationData.CreatedOn,
		BumpedOn:  creationData.CreatedOn,
		Replies:   []domain.Reply{},
	}, nil
}

func (b *Board) ListRecentThreads(ctx context.Context, board domain.BoardName) (threads []domain.Thread, err error) {
	defer func() { observe("list_threads", err) }()

	if err := b.validator.BoardName(board); err != nil {
		return nil, err
	}

	threads, err = b.storage.ListThreads(ctx, board, b.opts.ThreadsPerPage)
	if err != nil {
		return nil, err
	}
	for i := range threads {
		threads[i].ReplyCount = len(threads[i].Replies)
		threads[i].Replies = latestReplies(threads[i].Replies, b.opts.NLastReplies)
	}
	return threads, nil
}

func (b *Board) GetThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (thread domain.Thread, err error) {
	defer func() { observe("get_thread", err) }()
	return b.getThread(ctx, board, threadId)
}

func (b *Board) getThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (domain.Thread, error) {
	if err := b.validator.BoardName(board); err != nil {
		return domain.Thread{}, err
	}
	threadId, err := canonicalId(threadId, "Thread")
	if err != nil {
		return domain.Thread{}, err
	}

	thread, err := b.storage.GetThread(ctx, board, threadId)
	if err != nil {
		return domain.Thread{}, err
	}
	thread.ReplyCount = len(thread.Replies)
	return thread, nil
}

func (b *Board) ReportThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (err error) {
	defer func() { observe("report_thread", err) }()

	if err := b.validator.BoardName(board); err != nil {
		return err
	}
	threadId, err = canonicalId(threadId, "Thread")
	if err != nil {
		return err
	}
	return b.storage.ReportThread(ctx, board, threadId)
}

func (b *Board) DeleteThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, password domain.Password) (result domain.DeleteResult, err error) {
	defer func() { observeDelete("delete_thread", result, err) }()

	if err := b.validator.BoardName(board); err != nil {
		return 0, err
	}
	if err := b.validator.Password(password); err != nil {
		return 0, err
	}
	threadId, err = canonicalId(threadId, "Thread")
	if err != nil {
		return 0, err
	}

	hash, err := b.storage.ThreadPasswordHash(ctx, board, threadId)
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

	// conditional on the hash we verified, a concurrent delete turns this into not found
	if err := b.storage.DeleteThread(ctx, board, threadId, hash); err != nil {
		return 0, err
	}
	return domain.Deleted, nil
}

// latestReplies keeps the n most recently created replies in chronological order.
// Replies created in the same millisecond are ordered by id.
func latestReplies(replies []domain.Reply, n int) []domain.Reply {
	if n <= 0 {
		return []domain.Reply{}
	}
	sorted := slices.Clone(replies)
	slices.SortStableFunc(sorted, func(a, b domain.Reply) int {
		if c := a.CreatedOn.Compare(b.CreatedOn); c != 0 {
			return c
		}
		return strings.Compare(a.Id, b.Id)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}
