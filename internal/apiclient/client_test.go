package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestGetTypeInfo_EscapesTypeName(t *testing.T) {
	var gotPath string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"type":"a b","description":"d","fields":[{"name":"port","type":"number","required":true,"description":"Port","example":"8080"}]}`)
	})

	info, err := c.GetTypeInfo(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/inputs/types/a%20b", gotPath)
	require.Len(t, info.Fields, 1)
	assert.Equal(t, "8080", info.Fields[0].Example)
	assert.True(t, info.Fields[0].Required)
}

func TestNonSuccessBecomesHTTPError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "  missing 'type'\n")
	})

	_, err := c.CreateInput(context.Background(), model.CreateInputRequest{Type: "http"})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "missing 'type'", Message(err))
}

func TestEmptyErrorBodyUsesStatusText(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ListInputs(context.Background())
	assert.Equal(t, "Service Unavailable", Message(err))
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"inputs": [`)
	})

	_, err := c.ListInputs(context.Background())
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "/inputs", decErr.Path)
}

func TestRecentLogs_UnwrapsEnvelope(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"logs":[{"entry":{"timestamp":"0","service":"svc","level":"info","message":"hi"},"received_at":"2026-01-02T03:04:05Z"}]},"status":200,"path":"/logs/recent"}`)
	})

	logs, err := c.RecentLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "svc", logs[0].Entry.Service)
	assert.Equal(t, 2026, logs[0].ReceivedAt.Year())
}

func TestRecentLogs_PlainBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"logs":[]}`)
	})

	logs, err := c.RecentLogs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestUploadStatus_ZeroTimeIsAbsent(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"batcher_enabled":true,"last_upload_at":"0001-01-01T00:00:00Z","last_upload_key":"","last_upload_count":0,"pending_count":3},"status":200,"path":"/logs/status"}`)
	})

	st, err := c.UploadStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.BatcherEnabled)
	assert.Nil(t, st.LastUploadAt)
	assert.Equal(t, 3, st.PendingCount)
}

func TestCreateInput_OmitsEmptyTitleAndConfig(t *testing.T) {
	var body map[string]any
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"1","type":"http","title":"input-1","configuration":{},"created_at":"2026-01-02T03:04:05Z","state":"RUNNING"}`)
	})

	item, err := c.CreateInput(context.Background(), model.CreateInputRequest{Type: "http", Config: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, map[string]any{"type": "http"}, body)
}

func TestSendLog_PathAndIgnoredBody(t *testing.T) {
	var gotPath string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusAccepted)
	})

	err := c.SendLog(context.Background(), "/svc a/", model.IngestPayload{Service: "s", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "/ingest/svc%20a", gotPath)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestNew_OptionsApplyToCopy(t *testing.T) {
	tr := &http.Transport{}
	custom := &http.Client{Transport: tr}

	c := New("", WithTimeout(3*time.Second), WithHTTPClient(custom), WithNewRelic(nil))
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout, "timeout survives a later WithHTTPClient")
	assert.NotSame(t, custom, c.httpClient)
	assert.Same(t, tr, c.httpClient.Transport)
	assert.Zero(t, custom.Timeout, "caller's client is left alone")
}

func TestFlushUploads_PostsAndDecodesStatus(t *testing.T) {
	var method, path string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = io.WriteString(w, `{"data":{"batcher_enabled":true,"last_upload_at":"2025-03-04T05:06:07Z","last_upload_count":2,"pending_count":0},"status":200,"path":"/uploads/flush"}`)
	})

	st, err := c.FlushUploads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/uploads/flush", path)
	require.NotNil(t, st.LastUploadAt)
	assert.Equal(t, 2, st.LastUploadCount)
}
