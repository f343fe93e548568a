package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/akavelog-dash/internal/apiclient"
	"github.com/akave-ai/akavelog-dash/internal/config"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/registry"
)

func newTestServer(t *testing.T, stub config.StubConfig) (*Server, *apiclient.Client) {
	t.Helper()
	s := New(&config.Config{
		Poll: config.PollConfig{MaxRecent: 200},
		Stub: stub,
	})
	ts := httptest.NewServer(s.Echo)
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, apiclient.New(ts.URL)
}

func TestServer_SchemaRoutes(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})
	ctx := context.Background()

	types, err := c.ListTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, types, "http")

	info, err := c.GetTypeInfo(ctx, "http")
	require.NoError(t, err)
	f, ok := info.Field("description")
	require.True(t, ok)
	assert.True(t, f.Required)
	assert.Equal(t, "raw", f.Example)

	_, err = c.GetTypeInfo(ctx, "nope")
	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestServer_CreateSendAndRead(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})
	ctx := context.Background()

	item, err := c.CreateInput(ctx, model.CreateInputRequest{
		Type:   "http",
		Title:  "web",
		Config: map[string]any{"description": "web-logs", "base_path": "/ingest"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "web", item.Title)
	assert.Equal(t, "RUNNING", item.State)
	assert.False(t, item.CreatedAt.IsZero())

	list, err := c.ListInputs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "web-logs", list[0].Configuration["description"])

	err = c.SendLog(ctx, "web-logs", model.IngestPayload{
		Service: "demo-ui", Message: "hello", Level: "info", Tags: map[string]string{"source": "web"},
	})
	require.NoError(t, err)

	logs, err := c.RecentLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "hello", logs[0].Entry.Message)
	assert.Equal(t, "web", logs[0].Entry.Tags["source"])
	assert.False(t, logs[0].ReceivedAt.IsZero())

	st, err := c.UploadStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.BatcherEnabled)
	assert.Nil(t, st.LastUploadAt)
}

func TestServer_CreateDefaultsToRaw(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})
	ctx := context.Background()

	item, err := c.CreateInput(ctx, model.CreateInputRequest{Type: "http"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(item.Title, "input-"))
	assert.Equal(t, "raw", item.Configuration["description"])
	require.NoError(t, c.SendLog(ctx, "raw", model.IngestPayload{Service: "s", Message: "m"}))
}

func TestServer_CreateRejectsBadRequests(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})
	ctx := context.Background()

	_, err := c.CreateInput(ctx, model.CreateInputRequest{Type: "syslog"})
	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "unknown input type: syslog")

	_, err = c.CreateInput(ctx, model.CreateInputRequest{Type: "http", Config: map[string]any{"description": "has space"}})
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)

	list, err := c.ListInputs(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServer_IngestErrors(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})
	ctx := context.Background()

	err := c.SendLog(ctx, "raw", model.IngestPayload{Service: "s", Message: "m"})
	assert.Equal(t, "no input mounted at /ingest/raw", apiclient.Message(err))

	_, err = c.CreateInput(ctx, model.CreateInputRequest{Type: "http"})
	require.NoError(t, err)

	err = c.SendLog(ctx, "raw", model.IngestPayload{Service: "s"})
	assert.Equal(t, "missing required field: message", apiclient.Message(err))
}

func TestServer_BatcherUploads(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{BatcherEnabled: true, MaxBatchSize: 100})
	ctx := context.Background()

	_, err := c.CreateInput(ctx, model.CreateInputRequest{Type: "http"})
	require.NoError(t, err)
	require.NoError(t, c.SendLog(ctx, "raw", model.IngestPayload{Service: "s", Message: "1"}))
	require.NoError(t, c.SendLog(ctx, "raw", model.IngestPayload{Service: "s", Message: "2"}))

	st, err := c.UploadStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.BatcherEnabled)
	assert.Equal(t, 2, st.PendingCount)
	assert.Nil(t, st.LastUploadAt)

	st, err = c.FlushUploads(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastUploadAt)

	st, err = c.UploadStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastUploadAt)
	assert.Equal(t, 2, st.LastUploadCount)
	assert.Equal(t, 0, st.PendingCount)
	assert.True(t, strings.HasPrefix(st.LastUploadKey, "logs/default/"))
	assert.True(t, strings.HasSuffix(st.LastUploadKey, ".json.gz"))

	logs, err := c.RecentLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestRecentLogsStore_Caps(t *testing.T) {
	s := newRecentLogsStore(3)
	for i := 0; i < 5; i++ {
		s.AddEntry(&model.LogEntry{Service: "s", Message: string(rune('a' + i))})
	}
	got := s.GetRecent()
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Entry.Message)
	assert.Equal(t, "e", got[2].Entry.Message)
}

func TestIngestDispatcher_MountUnmount(t *testing.T) {
	d := NewIngestDispatcher()
	d.Mount("raw", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest/raw/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	d.Unmount("/raw")
	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest/raw", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CustomBasePathMountsAtDescription(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})
	ctx := context.Background()

	item, err := c.CreateInput(ctx, model.CreateInputRequest{
		Type:   "http",
		Config: map[string]any{"description": "svc", "base_path": "/custom"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/custom", item.Configuration["base_path"])

	require.NoError(t, c.SendLog(ctx, registry.IngestPath(item), model.IngestPayload{Service: "s", Message: "m"}))

	err = c.SendLog(ctx, "custom/svc", model.IngestPayload{Service: "s", Message: "m"})
	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	logs, err := c.RecentLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestServer_FlushWithoutBatcher(t *testing.T) {
	_, c := newTestServer(t, config.StubConfig{})

	_, err := c.FlushUploads(context.Background())
	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestServer_ShutdownUnmountsInputs(t *testing.T) {
	s := New(&config.Config{Poll: config.PollConfig{MaxRecent: 200}})
	ts := httptest.NewServer(s.Echo)
	defer ts.Close()
	c := apiclient.New(ts.URL)
	ctx := context.Background()

	_, err := c.CreateInput(ctx, model.CreateInputRequest{Type: "http"})
	require.NoError(t, err)
	require.NoError(t, c.SendLog(ctx, "raw", model.IngestPayload{Service: "s", Message: "m"}))

	s.inputs.StopAll()

	err = c.SendLog(ctx, "raw", model.IngestPayload{Service: "s", Message: "m"})
	assert.Equal(t, "no input mounted at /ingest/raw", apiclient.Message(err))
	_ = s.Shutdown(ctx)
}
