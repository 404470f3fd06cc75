package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func sampleThread() domain.Thread {
	return domain.Thread{
		Id:         "9b2c9f2e-5a57-4a52-9d1e-5b9f7e0d6c11",
		Board:      "b",
		Text:       "Test issue #1",
		CreatedOn:  created,
		BumpedOn:   created.Add(time.Minute),
		ReplyCount: 5,
		Replies: []domain.Reply{
			{Id: "0f1d2e3c-0000-4000-8000-000000000001", Text: "hi", CreatedOn: created.Add(time.Minute)},
		},
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateThread(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		// Arrange
		var gotBoard, gotText, gotPassword string
		h := newTestHandler(&MockBoardService{CreateThreadFunc: func(board, text, password string) (domain.Thread, error) {
			gotBoard, gotText, gotPassword = board, text, password
			th := sampleThread()
			th.Replies = []domain.Reply{}
			th.ReplyCount = 0
			return th, nil
		}})
		rr := httptest.NewRecorder()

		// Act
		newTestRouter(h).ServeHTTP(rr, jsonRequest(http.MethodPost, "/api/threads/b", `{"text":"Test issue #1","delete_password":"p1"}`))

		// Assert
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "b", gotBoard)
		assert.Equal(t, "Test issue #1", gotText)
		assert.Equal(t, "p1", gotPassword)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var fields map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fields))
		assert.Equal(t, "Test issue #1", fields["text"])
		assert.Equal(t, "<p>Test issue #1</p>", fields["text_html"])
		assert.Equal(t, []any{}, fields["replies"])
		assert.NotContains(t, fields, "delete_password")
		assert.NotContains(t, fields, "reported")
	})

	t.Run("form body", func(t *testing.T) {
		var gotText string
		h := newTestHandler(&MockBoardService{CreateThreadFunc: func(board, text, password string) (domain.Thread, error) {
			gotText = text
			return sampleThread(), nil
		}})
		rr := httptest.NewRecorder()

		newTestRouter(h).ServeHTTP(rr, formRequest(http.MethodPost, "/api/threads/b", "text=hello+there&delete_password=p1"))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "hello there", gotText)
	})

	t.Run("missing field", func(t *testing.T) {
		called := false
		h := newTestHandler(&MockBoardService{CreateThreadFunc: func(board, text, password string) (domain.Thread, error) {
			called = true
			return domain.Thread{}, nil
		}})
		rr := httptest.NewRecorder()

		newTestRouter(h).ServeHTTP(rr, jsonRequest(http.MethodPost, "/api/threads/b", `{"text":"no password"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, called)
	})

	t.Run("invalid json", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(newTestHandler(&MockBoardService{})).ServeHTTP(rr, jsonRequest(http.MethodPost, "/api/threads/b", `{invalid`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Body is invalid json\n", rr.Body.String())
	})

	t.Run("service validation error", func(t *testing.T) {
		h := newTestHandler(&MockBoardService{CreateThreadFunc: func(board, text, password string) (domain.Thread, error) {
			return domain.Thread{}, internal_errors.BadRequest("Text is too long")
		}})
		rr := httptest.NewRecorder()

		newTestRouter(h).ServeHTTP(rr, jsonRequest(http.MethodPost, "/api/threads/b", `{"text":"x","delete_password":"p"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Text is too long\n", rr.Body.String())
	})

	t.Run("store failure hides details", func(t *testing.T) {
		h := newTestHandler(&MockBoardService{CreateThreadFunc: func(board, text, password string) (domain.Thread, error) {
			return domain.Thread{}, errors.New("pq: connection refused")
		}})
		rr := httptest.NewRecorder()

		newTestRouter(h).ServeHTTP(rr, jsonRequest(http.MethodPost, "/api/threads/b", `{"text":"x","delete_password":"p"}`))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pq")
	})
}

func TestListThreads(t *testing.T) {
	t.Run("returns threads", func(t *testing.T) {
		h := newTestHandler(&MockBoardService{ListRecentThreadsFunc: func(board string) ([]domain.Thread, error) {
			assert.Equal(t, "b", board)
			return []domain.Thread{sampleThread()}, nil
		}})
		rr := httptest.NewRecorder()

		newTestRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/threads/b", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var threads []api.ThreadResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &threads))
		require.Len(t, threads, 1)
		assert.Equal(t, 5, threads[0].ReplyCount)
		assert.Equal(t, created, threads[0].CreatedOn)
		assert.Equal(t, created.Add(time.Minute), threads[0].BumpedOn)
		require.Len(t, threads[0].Replies, 1)
		assert.Equal(t, "<p>hi</p>", threads[0].Replies[0].TextHTML)
	})

	t.Run("empty board is an empty array", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(newTestHandler(&MockBoardService{})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/threads/b", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", rr.Body.String())
	})

	t.Run("hidden fields never serialized", func(t *testing.T) {
		h := newTestHandler(&MockBoardService{ListRecentThreadsFunc: func(board string) ([]domain.Thread, error) {
			return []domain.Thread{sampleThread()}, nil
		}})
		rr := httptest.NewRecorder()

		newTestRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/threads/b", nil))

		assert.NotContains(t, rr.Body.String(), "delete_password")
		assert.NotContains(t, rr.Body.String(), "reported")
	})
}

func TestReportThread(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantId     string
		wantStatus int
		wantBody   string
	}{
		{name: "thread_id", body: `{"thread_id":"abc"}`, wantId: "abc", wantStatus: http.StatusOK, wantBody: "success"},
		{name: "legacy report_id", body: `{"report_id":"legacy"}`, wantId: "legacy", wantStatus: http.StatusOK, wantBody: "success"},
		{name: "neither", body: `{}`, wantStatus: http.StatusBadRequest, wantBody: "Required fields missing\n"},
		{name: "not found", body: `{"thread_id":"abc"}`, serviceErr: internal_errors.NotFound("Thread not found"), wantId: "abc", wantStatus: http.StatusNotFound, wantBody: "Thread not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotId string
			h := newTestHandler(&MockBoardService{ReportThreadFunc: func(board, threadId string) error {
				gotId = threadId
				return tt.serviceErr
			}})
			rr := httptest.NewRecorder()

			newTestRouter(h).ServeHTTP(rr, jsonRequest(http.MethodPut, "/api/threads/b", tt.body))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
			assert.Equal(t, tt.wantId, gotId)
		})
	}
}

func TestDeleteThread(t *testing.T) {
	tests := []struct {
		name       string
		result     domain.DeleteResult
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{name: "deleted", result: domain.Deleted, wantStatus: http.StatusOK, wantBody: "success"},
		{name: "incorrect password is still 200", result: domain.IncorrectPassword, wantStatus: http.StatusOK, wantBody: "incorrect password"},
		{name: "not found", serviceErr: internal_errors.NotFound("Thread not found"), wantStatus: http.StatusNotFound, wantBody: "Thread not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPassword string
			h := newTestHandler(&MockBoardService{DeleteThreadFunc: func(board, threadId, password string) (domain.DeleteResult, error) {
				gotPassword = password
				return tt.result, tt.serviceErr
			}})
			rr := httptest.NewRecorder()

			// html forms send DELETE bodies urlencoded
			newTestRouter(h).ServeHTTP(rr, formRequest(http.MethodDelete, "/api/threads/b", "thread_id=abc&delete_password=p1"))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
			assert.Equal(t, "p1", gotPassword)
		})
	}
}
