package api

import "time"

// Request DTOs

type CreateReplyRequest struct {
	ThreadId       string `json:"thread_id" validate:"required"`
	Text           string `json:"text" validate:"required"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

type ReportReplyRequest struct {
	ThreadId string `json:"thread_id" validate:"required"`
	ReplyId  string `json:"reply_id" validate:"required"`
}

type DeleteReplyRequest struct {
	ThreadId       string `json:"thread_id" validate:"required"`
	ReplyId        string `json:"reply_id" validate:"required"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

// Response DTOs

type ReplyResponse struct {
	Id        string    `json:"id"`
	Text      string    `json:"text"`
	TextHTML  string    `json:"text_html"`
	CreatedOn time.Time `json:"created_on"`
}
