package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.CreateThreadRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.board.CreateThread(r.Context(), board, body.Text, body.DeletePassword)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.threadResponse(thread))
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	threads, err := h.board.ListRecentThreads(r.Context(), board)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]api.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		response = append(response, h.threadResponse(t))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) ReportThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.ReportThreadRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.board.ReportThread(r.Context(), board, body.Id()); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeText(w, http.StatusOK, "success")
}

// DeleteThread answers 200 for a wrong password too, the body tells the outcome
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.DeleteThreadRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.board.DeleteThread(r.Context(), board, body.ThreadId, body.DeletePassword)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeText(w, http.StatusOK, result.String())
}
