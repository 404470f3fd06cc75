package service

import (
	"context"
	"slices"
	"sync"

	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/errors"
)

// fakeStorage is an in-memory BoardStorage with the same semantics as the real backends.
type fakeStorage struct {
	mu      sync.Mutex
	threads map[string]*storedThread // board + "/" + id
}

type storedThread struct {
	domain.Thread
	hash     domain.PasswordHash
	reported bool
	replies  []*storedReply
}

type storedReply struct {
	domain.Reply
	hash     domain.PasswordHash
	reported bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{threads: make(map[string]*storedThread)}
}

func (s *fakeStorage) thread(board, id string) (*storedThread, error) {
	t, ok := s.threads[board+"/"+id]
	if !ok {
		return nil, errors.NotFound("Thread not found")
	}
	return t, nil
}

func (t *storedThread) reply(id string) (*storedReply, error) {
	for _, r := range t.replies {
		if r.Id == id {
			return r, nil
		}
	}
	return nil, errors.NotFound("Reply not found")
}

func (t *storedThread) public() domain.Thread {
	out := t.Thread
	out.Replies = make([]domain.Reply, 0, len(t.replies))
	for _, r := range t.replies {
		out.Replies = append(out.Replies, r.Reply)
	}
	return out
}

func (s *fakeStorage) InsertThread(ctx context.Context, d domain.ThreadCreationData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[d.Board+"/"+d.Id] = &storedThread{
		Thread: domain.Thread{Id: d.Id, Board: d.Board, Text: d.Text, CreatedOn: d.CreatedOn, BumpedOn: d.CreatedOn},
		hash:   d.PasswordHash,
	}
	return nil
}

func (s *fakeStorage) AppendReply(ctx context.Context, d domain.ReplyCreationData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(d.Board, d.ThreadId)
	if err != nil {
		return err
	}
	t.replies = append(t.replies, &storedReply{Reply: domain.Reply{Id: d.Id, Text: d.Text, CreatedOn: d.CreatedOn}, hash: d.PasswordHash})
	t.BumpedOn = d.CreatedOn
	return nil
}

func (s *fakeStorage) ListThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Thread
	for _, t := range s.threads {
		if t.Board == board {
			out = append(out, t.public())
		}
	}
	slices.SortFunc(out, func(a, b domain.Thread) int {
		if c := b.BumpedOn.Compare(a.BumpedOn); c != 0 {
			return c
		}
		if a.Id > b.Id {
			return -1
		}
		return 1
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStorage) GetThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, id)
	if err != nil {
		return domain.Thread{}, err
	}
	return t.public(), nil
}

func (s *fakeStorage) ReportThread(ctx context.Context, board domain.BoardName, id domain.ThreadId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, id)
	if err != nil {
		return err
	}
	t.reported = true
	return nil
}

func (s *fakeStorage) ReportReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, threadId)
	if err != nil {
		return err
	}
	r, err := t.reply(replyId)
	if err != nil {
		return err
	}
	r.reported = true
	return nil
}

func (s *fakeStorage) ThreadPasswordHash(ctx context.Context, board domain.BoardName, id domain.ThreadId) (domain.PasswordHash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, id)
	if err != nil {
		return "", err
	}
	return t.hash, nil
}

func (s *fakeStorage) ReplyPasswordHash(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId) (domain.PasswordHash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, threadId)
	if err != nil {
		return "", err
	}
	r, err := t.reply(replyId)
	if err != nil {
		return "", err
	}
	return r.hash, nil
}

func (s *fakeStorage) DeleteThread(ctx context.Context, board domain.BoardName, id domain.ThreadId, hash domain.PasswordHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, id)
	if err != nil || t.hash != hash {
		return errors.NotFound("Thread not found")
	}
	delete(s.threads, board+"/"+id)
	return nil
}

func (s *fakeStorage) TombstoneReply(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, replyId domain.ReplyId, hash domain.PasswordHash, text domain.Text) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.thread(board, threadId)
	if err != nil {
		return err
	}
	r, err := t.reply(replyId)
	if err != nil || r.hash != hash {
		return errors.NotFound("Reply not found")
	}
	r.Text = text
	return nil
}
