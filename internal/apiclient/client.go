// Package apiclient is a typed client for the akavelog management and ingest API.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL = "http://localhost:8080"
	maxErrorBody   = 4096
)

// Client talks to the akavelog backend over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nrApp      *newrelic.Application
}

type settings struct {
	httpClient *http.Client
	timeout    *time.Duration
	nrApp      *newrelic.Application
}

// Option configures a Client. Options only record settings; New applies
// them to its own copy of the http.Client, so their order does not matter
// and a caller's client is never modified.
type Option func(*settings)

// WithHTTPClient uses hc as the template for the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = &d }
}

// WithNewRelic records every call as a New Relic transaction with an external segment.
func WithNewRelic(app *newrelic.Application) Option {
	return func(s *settings) { s.nrApp = app }
}

// New returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var set settings
	for _, opt := range opts {
		opt(&set)
	}

	hc := &http.Client{}
	if set.httpClient != nil {
		copied := *set.httpClient
		hc = &copied
	}
	if set.timeout != nil {
		hc.Timeout = *set.timeout
	}
	if set.nrApp != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = newrelic.NewRoundTripper(base)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		nrApp:      set.nrApp,
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTypes returns the registered input type names (GET /inputs/types), sorted.
func (c *Client) ListTypes(ctx context.Context) ([]string, error) {
	var out struct {
		Types []string `json:"types"`
	}
	if err := c.do(ctx, http.MethodGet, "/inputs/types", nil, &out); err != nil {
		return nil, err
	}
	sort.Strings(out.Types)
	return out.Types, nil
}

// GetTypeInfo returns the field schema of one input type (GET /inputs/types/{type}).
func (c *Client) GetTypeInfo(ctx context.Context, typeName string) (model.InputTypeInfo, error) {
	var info model.InputTypeInfo
	err := c.do(ctx, http.MethodGet, "/inputs/types/"+url.PathEscape(typeName), nil, &info)
	return info, err
}

// ListInputs returns all provisioned inputs (GET /inputs).
func (c *Client) ListInputs(ctx context.Context) ([]model.InputItem, error) {
	var out struct {
		Inputs []model.InputItem `json:"inputs"`
	}
	if err := c.do(ctx, http.MethodGet, "/inputs", nil, &out); err != nil {
		return nil, err
	}
	return out.Inputs, nil
}

// CreateInput provisions a new input (POST /inputs).
func (c *Client) CreateInput(ctx context.Context, req model.CreateInputRequest) (model.InputItem, error) {
	var item model.InputItem
	err := c.do(ctx, http.MethodPost, "/inputs", req, &item)
	return item, err
}

// RecentLogs returns the backend's recent log window, oldest first (GET /logs/recent).
func (c *Client) RecentLogs(ctx context.Context) ([]model.RecentLog, error) {
	var out struct {
		Logs []model.RecentLog `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/logs/recent", nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// UploadStatus returns the batcher status snapshot (GET /logs/status).
func (c *Client) UploadStatus(ctx context.Context) (model.UploadStatus, error) {
	var st model.UploadStatus
	err := c.do(ctx, http.MethodGet, "/logs/status", nil, &st)
	return st, err
}

// FlushUploads asks the stub backend to upload its pending batch now
// (POST /uploads/flush) and returns the resulting status.
func (c *Client) FlushUploads(ctx context.Context) (model.UploadStatus, error) {
	var st model.UploadStatus
	err := c.do(ctx, http.MethodPost, "/uploads/flush", nil, &st)
	return st, err
}

// SendLog posts one log entry to /ingest/<ingestPath>. The response body is ignored.
func (c *Client) SendLog(ctx context.Context, ingestPath string, payload model.IngestPayload) error {
	return c.do(ctx, http.MethodPost, "/ingest/"+escapePath(ingestPath), payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	if c.nrApp != nil {
		txn := c.nrApp.StartTransaction(method + " " + routeName(path))
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.StatusCode, raw),
		}
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if err := json.Unmarshal(unwrapEnvelope(raw), result); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// unwrapEnvelope returns the "data" member of the backend's standard
// {data, status, path} response wrapper, or body unchanged when it is not wrapped.
func unwrapEnvelope(body []byte) []byte {
	var env struct {
		Data   jsoniter.RawMessage `json:"data"`
		Status *int                `json:"status"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if env.Status == nil || len(env.Data) == 0 {
		return body
	}
	return env.Data
}

func escapePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// routeName collapses per-resource paths so transaction names stay low-cardinality.
func routeName(path string) string {
	switch {
	case strings.HasPrefix(path, "/inputs/types/"):
		return "/inputs/types/{type}"
	case strings.HasPrefix(path, "/ingest/"):
		return "/ingest/{path}"
	}
	return path
}

func trimBody(b []byte) string {
	return strings.TrimSpace(string(b))
}
