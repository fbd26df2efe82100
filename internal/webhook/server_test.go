package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/queue"
)

const testSecret = "webhook-test-secret"

func newTestServer(t *testing.T) (*Server, *queue.MemoryQueue) {
	t.Helper()
	q := queue.NewMemoryQueue()
	srv := New(&config.WebhookConfig{
		Host:   "127.0.0.1",
		Port:   8081,
		Secret: testSecret,
	}, q)
	return srv, q
}

func postJSON(t *testing.T, handler http.Handler, path, secret string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func validEvent() map[string]any {
	return map[string]any{
		"chainId":         uint64(10143),
		"eventName":       "PriceFeedUpdated",
		"blockNumber":     "99001122",
		"transactionHash": "0xfeed",
		"logIndex":        uint64(3),
		"data": map[string]any{
			"token": "0x00000000000000000000000000000000000000bb",
			"price": "182000000000",
		},
	}
}

func TestWebhook_RejectsMissingSecret(t *testing.T) {
	srv, q := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/indexer/webhook", "", validEvent())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	counts, err := q.JobCounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Waiting)
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	srv, q := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/indexer/webhook", "not-the-secret", validEvent())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	counts, err := q.JobCounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Waiting)
}

func TestWebhook_EnqueuesWithEventPriority(t *testing.T) {
	srv, q := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/indexer/webhook", testSecret, validEvent())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Event queued for processing", resp.Message)

	job, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "PriceFeedUpdated", job.EventName)
	assert.Equal(t, uint8(2), job.Priority)
	assert.Equal(t, "99001122", job.BlockNumber.String())
	assert.Equal(t, uint(3), job.Retry.Attempts)
	assert.Equal(t, queue.BackoffTypeExponential, job.Retry.Backoff.Type)
	assert.Equal(t, int64(2000), job.Retry.Backoff.Delay)
}

func TestWebhook_UnknownEventGetsDefaultPriority(t *testing.T) {
	srv, q := newTestServer(t)

	event := validEvent()
	event["eventName"] = "SomethingNovel"
	rec := postJSON(t, srv.Handler(), "/indexer/webhook", testSecret, event)

	require.Equal(t, http.StatusOK, rec.Code)
	job, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, uint8(10), job.Priority)
}

func TestWebhook_RejectsMalformedBlockNumber(t *testing.T) {
	srv, q := newTestServer(t)

	event := validEvent()
	event["blockNumber"] = "not-a-number"
	rec := postJSON(t, srv.Handler(), "/indexer/webhook", testSecret, event)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	counts, err := q.JobCounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Waiting)
}

func TestWebhook_RejectsMissingEventName(t *testing.T) {
	srv, _ := newTestServer(t)

	event := validEvent()
	delete(event, "eventName")
	rec := postJSON(t, srv.Handler(), "/indexer/webhook", testSecret, event)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth_ReportsQueueCounts(t *testing.T) {
	srv, q := newTestServer(t)

	for range 3 {
		rec := postJSON(t, srv.Handler(), "/indexer/webhook", testSecret, validEvent())
		require.Equal(t, http.StatusOK, rec.Code)
	}
	_, ok := q.Dequeue()
	require.True(t, ok)
	q.MarkCompleted()

	rec := postJSON(t, srv.Handler(), "/indexer/health", testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string           `json:"status"`
		Queue  map[string]int64 `json:"queue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(2), resp.Queue["waiting"])
	assert.Equal(t, int64(1), resp.Queue["completed"])
	assert.Zero(t, resp.Queue["active"])
	assert.Zero(t, resp.Queue["failed"])
}

func TestHealth_NoSecretRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/indexer/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
