package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/itchan-dev/anonboard/backend/internal/setup"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			Storage:        config.Storage{Driver: config.DriverSqlite, SqlitePath: ":memory:"},
			ThreadsPerPage: 10,
			NLastReplies:   3,
			BcryptCost:     10,
			RequestTimeout: 10 * time.Second,
			MaxBodyBytes:   64 << 10,
			RateLimits: config.RateLimits{
				CreatePerMinute: 100,
				ReportPerMinute: 100,
				DeletePerMinute: 100,
			},
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	deps, err := setup.SetupDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	return New(deps)
}

func do(t *testing.T, srv http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func decodeThread(t *testing.T, rr *httptest.ResponseRecorder) api.ThreadResponse {
	t.Helper()
	var thread api.ThreadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &thread), rr.Body.String())
	return thread
}

func TestBoardLifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig())

	// create
	rr := do(t, srv, http.MethodPost, "/api/threads/test", url.Values{"text": {"Test issue #1"}, "delete_password": {"p1"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	thread := decodeThread(t, rr)
	assert.Equal(t, "Test issue #1", thread.Text)
	assert.Equal(t, thread.CreatedOn, thread.BumpedOn)
	assert.Empty(t, thread.Replies)

	// reply
	rr = do(t, srv, http.MethodPost, "/api/replies/test", url.Values{"thread_id": {thread.Id}, "text": {"first"}, "delete_password": {"p2"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	withReply := decodeThread(t, rr)
	require.Len(t, withReply.Replies, 1)
	reply := withReply.Replies[0]
	assert.Equal(t, reply.CreatedOn, withReply.BumpedOn)
	assert.Equal(t, 1, withReply.ReplyCount)

	// listing
	rr = do(t, srv, http.MethodGet, "/api/threads/test", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var threads []api.ThreadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &threads))
	require.Len(t, threads, 1)
	assert.Equal(t, thread.Id, threads[0].Id)
	assert.NotContains(t, rr.Body.String(), "delete_password")
	assert.NotContains(t, rr.Body.String(), "reported")

	// reports
	rr = do(t, srv, http.MethodPut, "/api/threads/test", url.Values{"thread_id": {thread.Id}})
	assert.Equal(t, "success", rr.Body.String())
	rr = do(t, srv, http.MethodPut, "/api/replies/test", url.Values{"thread_id": {thread.Id}, "reply_id": {reply.Id}})
	assert.Equal(t, "success", rr.Body.String())

	// reply deletion keeps a tombstone
	rr = do(t, srv, http.MethodDelete, "/api/replies/test", url.Values{"thread_id": {thread.Id}, "reply_id": {reply.Id}, "delete_password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "incorrect password", rr.Body.String())
	rr = do(t, srv, http.MethodDelete, "/api/replies/test", url.Values{"thread_id": {thread.Id}, "reply_id": {reply.Id}, "delete_password": {"p2"}})
	assert.Equal(t, "success", rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/replies/test?thread_id="+thread.Id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	full := decodeThread(t, rr)
	require.Len(t, full.Replies, 1)
	assert.Equal(t, domain.DeletedText, full.Replies[0].Text)

	// thread deletion
	rr = do(t, srv, http.MethodDelete, "/api/threads/test", url.Values{"thread_id": {thread.Id}, "delete_password": {"wrong"}})
	assert.Equal(t, "incorrect password", rr.Body.String())
	rr = do(t, srv, http.MethodDelete, "/api/threads/test", url.Values{"thread_id": {thread.Id}, "delete_password": {"p1"}})
	assert.Equal(t, "success", rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/replies/test?thread_id="+thread.Id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, srv, http.MethodDelete, "/api/threads/test", url.Values{"thread_id": {thread.Id}, "delete_password": {"p1"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBoardsAreIsolated(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rr := do(t, srv, http.MethodPost, "/api/threads/a", url.Values{"text": {"on a"}, "delete_password": {"p"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	thread := decodeThread(t, rr)

	rr = do(t, srv, http.MethodGet, "/api/replies/b?thread_id="+thread.Id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, srv, http.MethodGet, "/api/threads/b", nil)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestInvalidBoardName(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rr := do(t, srv, http.MethodPost, "/api/threads/"+url.PathEscape("no spaces"), url.Values{"text": {"x"}, "delete_password": {"p"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProbesAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rr := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	do(t, srv, http.MethodGet, "/api/threads/test", nil)
	rr = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `path="/api/threads/{board}"`)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rr := do(t, srv, http.MethodGet, "/api/threads/test", nil)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/threads/test", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Public.RateLimits.CreatePerMinute = 1
	srv := newTestServer(t, cfg)

	rr := do(t, srv, http.MethodPost, "/api/threads/test", url.Values{"text": {"one"}, "delete_password": {"p"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	thread := decodeThread(t, rr)

	// replies share the create budget
	rr = do(t, srv, http.MethodPost, "/api/replies/test", url.Values{"thread_id": {thread.Id}, "text": {"two"}, "delete_password": {"p"}})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// reads are not limited
	rr = do(t, srv, http.MethodGet, "/api/threads/test", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Public.MaxBodyBytes = 32
	srv := newTestServer(t, cfg)

	rr := do(t, srv, http.MethodPost, "/api/threads/test", url.Values{"text": {strings.Repeat("x", 100)}, "delete_password": {"p"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
