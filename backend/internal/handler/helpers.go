package handler

import (
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/domain"
)

func (h *Handler) threadResponse(thread domain.Thread) api.ThreadResponse {
	replies := make([]api.ReplyResponse, 0, len(thread.Replies))
	for _, r := range thread.Replies {
		replies = append(replies, h.replyResponse(r))
	}
	return api.ThreadResponse{
		Id:         thread.Id,
		Text:       thread.Text,
		TextHTML:   h.markup.Render(thread.Text),
		CreatedOn:  thread.CreatedOn,
		BumpedOn:   thread.BumpedOn,
		ReplyCount: thread.ReplyCount,
		Replies:    replies,
	}
}

func (h *Handler) replyResponse(reply domain.Reply) api.ReplyResponse {
	return api.ReplyResponse{
		Id:        reply.Id,
		Text:      reply.Text,
		TextHTML:  h.markup.Render(reply.Text),
		CreatedOn: reply.CreatedOn,
	}
}
