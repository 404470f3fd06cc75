package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/utils"
)

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.CreateReplyRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.board.CreateReply(r.Context(), board, body.ThreadId, body.Text, body.DeletePassword)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.threadResponse(thread))
}

// GetThread returns a thread with every reply, the id comes from ?thread_id=
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	threadId := r.URL.Query().Get("thread_id")
	if threadId == "" {
		http.Error(w, "thread_id is required", http.StatusBadRequest)
		return
	}

	thread, err := h.board.GetThread(r.Context(), board, threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.threadResponse(thread))
}

func (h *Handler) ReportReply(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.ReportReplyRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.board.ReportReply(r.Context(), board, body.ThreadId, body.ReplyId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeText(w, http.StatusOK, "success")
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.DeleteReplyRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.board.DeleteReply(r.Context(), board, body.ThreadId, body.ReplyId, body.DeletePassword)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeText(w, http.StatusOK, result.String())
}
