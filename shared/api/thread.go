package api

import "time"

// Request DTOs

type CreateThreadRequest struct {
	Text           string `json:"text" validate:"required"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

// ReportThreadRequest accepts report_id as an alias of thread_id, older clients send it.
type ReportThreadRequest struct {
	ThreadId string `json:"thread_id" validate:"required_without=ReportId"`
	ReportId string `json:"report_id" validate:"required_without=ThreadId"`
}

func (r ReportThreadRequest) Id() string {
	if r.ThreadId != "" {
		return r.ThreadId
	}
	return r.ReportId
}

type DeleteThreadRequest struct {
	ThreadId       string `json:"thread_id" validate:"required"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

// Response DTOs

type ThreadResponse struct {
	Id         string          `json:"id"`
	Text       string          `json:"text"`
	TextHTML   string          `json:"text_html"`
	CreatedOn  time.Time       `json:"created_on"`
	BumpedOn   time.Time       `json:"bumped_on"`
	ReplyCount int             `json:"reply_count"`
	Replies    []ReplyResponse `json:"replies"`
}
