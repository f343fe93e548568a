// Package controller composes the dashboard's data sources: it owns the
// polling lifecycle, the single error slot, and the create and send actions.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/akave-ai/akavelog-dash/internal/apiclient"
	"github.com/akave-ai/akavelog-dash/internal/form"
	"github.com/akave-ai/akavelog-dash/internal/logstream"
	"github.com/akave-ai/akavelog-dash/internal/metrics"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/poller"
	"github.com/akave-ai/akavelog-dash/internal/registry"
	"github.com/akave-ai/akavelog-dash/internal/schema"
	"github.com/akave-ai/akavelog-dash/internal/state"
	"github.com/akave-ai/akavelog-dash/internal/uploadstatus"
)

var (
	// ErrBusy is returned by Create while a previous create is in flight.
	ErrBusy = errors.New("create already in progress")
	// ErrUnavailable is returned by Create while the input schema is not loaded.
	ErrUnavailable = form.ErrUnavailable
)

// API is everything the controller needs from the backend.
type API interface {
	schema.Source
	registry.Lister
	logstream.Source
	uploadstatus.Source
	CreateInput(ctx context.Context, req model.CreateInputRequest) (model.InputItem, error)
	SendLog(ctx context.Context, ingestPath string, payload model.IngestPayload) error
}

// MutationError wraps a failed create or send-test action.
type MutationError struct {
	Action string
	Err    error
}

func (e *MutationError) Error() string { return fmt.Sprintf("%s: %v", e.Action, e.Err) }

func (e *MutationError) Unwrap() error { return e.Err }

// Options tune the controller. Zero values take the defaults below.
type Options struct {
	InputType      string        // default "http"
	DefaultTitle   string        // default "my-http-input"
	PollInterval   time.Duration // default poller.DefaultInterval
	MaxRecentLogs  int           // default logstream.MaxRecent
	TestLogService string        // default "demo-ui"
	TestLogSource  string        // default "web"
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
}

func (o *Options) applyDefaults() {
	if o.InputType == "" {
		o.InputType = "http"
	}
	if o.DefaultTitle == "" {
		o.DefaultTitle = "my-http-input"
	}
	if o.PollInterval <= 0 {
		o.PollInterval = poller.DefaultInterval
	}
	if o.TestLogService == "" {
		o.TestLogService = "demo-ui"
	}
	if o.TestLogSource == "" {
		o.TestLogSource = "web"
	}
}

// Controller is created once per dashboard and may be mounted and torn down
// repeatedly.
type Controller struct {
	api      API
	opts     Options
	log      zerolog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	now      func() time.Time

	Schema *schema.Registry
	Form   *form.Model
	Inputs *registry.Registry
	Logs   *logstream.Buffer
	Status *uploadstatus.Monitor

	errCell    *state.Cell[string]
	submitting *state.Cell[bool]

	submitMu sync.Mutex
	busy     bool

	mu     sync.Mutex
	scope  *poller.Scope
	ticker *poller.Ticker
}

// New wires the components on top of api.
func New(api API, opts Options) *Controller {
	opts.applyDefaults()
	log := opts.Logger.With().Str("component", "controller").Logger()
	return &Controller{
		api:        api,
		opts:       opts,
		log:        log,
		metrics:    opts.Metrics,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        time.Now,
		Schema:     schema.NewRegistry(api),
		Form:       form.New(opts.DefaultTitle),
		Inputs:     registry.New(api),
		Logs:       logstream.New(api, opts.MaxRecentLogs, opts.Logger, opts.Metrics),
		Status:     uploadstatus.New(api, opts.Logger, opts.Metrics),
		errCell:    state.NewCell(""),
		submitting: state.NewCell(false),
	}
}

// InputType is the input type the form creates.
func (c *Controller) InputType() string { return c.opts.InputType }

// PollInterval is the shared cadence of the log and status polls.
func (c *Controller) PollInterval() time.Duration { return c.opts.PollInterval }

// ErrorCell holds the latest user-visible error, "" for none.
func (c *Controller) ErrorCell() *state.Cell[string] { return c.errCell }

// Err returns the latest user-visible error, "" for none.
func (c *Controller) Err() string { return c.errCell.Get() }

// DismissError clears the error slot.
func (c *Controller) DismissError() { c.errCell.Set("") }

// SubmittingCell is true while a create is in flight.
func (c *Controller) SubmittingCell() *state.Cell[bool] { return c.submitting }

// Mounted reports whether the view is active.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope != nil
}

// Mount activates the view: it loads the form schema and the input list and
// starts the shared log/status ticker. It returns once the initial loads
// finish; their failures land in the form and error slot, not in the return
// value. Mounting an already mounted controller is a no-op.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.scope != nil {
		c.mu.Unlock()
		return nil
	}
	scope := poller.NewScope(ctx)
	ticker := poller.NewTicker(c.opts.PollInterval, c.Logs.Poll, c.Status.Poll)
	c.scope = scope
	c.ticker = ticker
	c.mu.Unlock()

	ticker.Start(scope)
	c.log.Info().Dur("interval", ticker.Interval()).Str("input_type", c.opts.InputType).Msg("mounted")

	g, gctx := errgroup.WithContext(scope.Context())
	g.Go(func() error {
		c.loadSchema(gctx, scope)
		return nil
	})
	g.Go(func() error {
		_ = c.refreshInputs(gctx, scope)
		return nil
	})
	return g.Wait()
}

// Teardown stops the ticker and discards any result still in flight. It
// does not wait for outstanding requests.
func (c *Controller) Teardown() {
	c.mu.Lock()
	scope := c.scope
	c.scope = nil
	c.ticker = nil
	c.mu.Unlock()
	if scope == nil {
		return
	}
	scope.Close()
	c.log.Info().Msg("torn down")
}

func (c *Controller) currentScope() *poller.Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

func (c *Controller) loadSchema(ctx context.Context, scope *poller.Scope) {
	info, err := c.Schema.Fetch(ctx, c.opts.InputType)
	if err != nil {
		c.log.Warn().Err(err).Msg("input config unavailable")
		return
	}
	scope.Do(func() { c.Form.Load(info) })
}

// RefreshInputs reloads the input list. A failure keeps the current list
// and is surfaced; a success clears the error slot. While mounted, a result
// that arrives after teardown is dropped.
func (c *Controller) RefreshInputs(ctx context.Context) error {
	return c.refreshInputs(ctx, c.currentScope())
}

func (c *Controller) refreshInputs(ctx context.Context, scope *poller.Scope) error {
	list, err := c.Inputs.Fetch(ctx)
	apply := func() {
		if err != nil {
			c.log.Warn().Err(err).Msg("refresh inputs")
			c.errCell.Set(apiclient.Message(err))
			return
		}
		c.Inputs.Replace(list)
		c.errCell.Set("")
	}
	if scope == nil {
		apply()
		return err
	}
	if !scope.Do(apply) {
		c.log.Debug().Err(err).Msg("input refresh discarded after teardown")
		if err == nil {
			err = context.Canceled
		}
	}
	return err
}

// Create submits the form. Only one create runs at a time. On success the
// input list is refreshed, the form is reset and the error slot cleared; on
// failure the error is surfaced and the form keeps what the user typed.
func (c *Controller) Create(ctx context.Context) (model.InputItem, error) {
	c.submitMu.Lock()
	if c.busy {
		c.submitMu.Unlock()
		return model.InputItem{}, ErrBusy
	}
	c.busy = true
	c.submitMu.Unlock()
	c.submitting.Set(true)
	defer func() {
		c.submitMu.Lock()
		c.busy = false
		c.submitMu.Unlock()
		c.submitting.Set(false)
	}()

	req, err := c.Form.Payload(c.opts.InputType)
	if err != nil {
		return model.InputItem{}, err
	}

	item, err := c.api.CreateInput(ctx, req)
	c.metrics.ObserveMutation("create", err)
	if err != nil {
		c.log.Warn().Err(err).Msg("create input")
		c.errCell.Set(apiclient.Message(err))
		return model.InputItem{}, &MutationError{Action: "create", Err: err}
	}
	c.log.Info().Str("id", item.ID).Str("title", item.Title).Msg("input created")

	c.errCell.Set("")
	_ = c.RefreshInputs(ctx)
	c.Form.Reset()
	return item, nil
}

// SendTestLog posts a sample log to item's ingest path. On success the log
// buffer is polled right away instead of waiting for the next tick.
func (c *Controller) SendTestLog(ctx context.Context, item model.InputItem) error {
	path := registry.IngestPath(item)
	payload := model.IngestPayload{
		Service: c.opts.TestLogService,
		Message: "Test log at " + c.now().UTC().Format(time.RFC3339),
		Level:   "info",
		Tags:    map[string]string{"source": c.opts.TestLogSource},
	}

	err := c.validate.Struct(payload)
	if err == nil {
		err = c.api.SendLog(ctx, path, payload)
	}
	c.metrics.ObserveMutation("send_test_log", err)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("send test log")
		c.errCell.Set(apiclient.Message(err))
		return &MutationError{Action: "send test log", Err: err}
	}

	if scope := c.currentScope(); scope != nil {
		c.Logs.Poll(scope)
	}
	return nil
}
