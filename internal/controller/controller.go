// Package controller owns the lifecycle of query requests: validation, issue,
// and stale-reply suppression by sequence id.
//
// A Controller is mutated only through Submit, Settle and Reset, which must all
// be called from one goroutine (the console's update loop). Issue performs the
// network call, never mutates the controller, and may run on any goroutine.
package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/diogo/nlq/internal/api"
	apierrors "github.com/diogo/nlq/internal/errors"
	"github.com/diogo/nlq/internal/models"
)

// State is the lifecycle state of the controller
type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateError
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Success or Error
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError
}

// Ticket is an accepted submission, tagged with its sequence id
type Ticket struct {
	Seq     uint64
	Request models.QueryRequest
}

// Outcome is the settled result of an issued ticket
type Outcome struct {
	Seq      uint64
	Response *models.QueryResponse
	Err      error
	Elapsed  time.Duration
}

// Snapshot is an immutable view of the controller state
type Snapshot struct {
	State    State
	Seq      uint64
	Request  *models.QueryRequest
	Response *models.QueryResponse
	Err      error
	Elapsed  time.Duration
}

type listener struct {
	id int
	fn func(Snapshot)
}

// Controller is the request lifecycle state machine
type Controller struct {
	client api.QueryClient
	logger *slog.Logger

	state    State
	latest   uint64
	request  *models.QueryRequest
	response *models.QueryResponse
	err      error
	elapsed  time.Duration

	discarded int

	listeners  []listener
	listenerID int
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger for lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates an idle controller issuing requests through client
func New(client api.QueryClient, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks a request before any network call
func Validate(req models.QueryRequest) error {
	if strings.TrimSpace(req.Locator) == "" {
		return apierrors.NewValidationError("db_path", "database locator is required")
	}
	if strings.TrimSpace(req.Question) == "" {
		return apierrors.NewValidationError("question", "question is required")
	}
	if !req.Dialect.Valid() {
		return apierrors.NewValidationError("dialect", fmt.Sprintf("unsupported dialect %q", req.Dialect))
	}
	if req.MaxTokens <= 0 {
		return apierrors.NewValidationError("max_tokens", fmt.Sprintf("max tokens must be a positive integer, got %d", req.MaxTokens))
	}
	return nil
}

// Submit validates req and, if accepted, moves to Pending and returns a ticket
// with the next sequence id. The caller issues exactly one call per ticket.
//
// A rejected request never reaches the network. It still becomes the latest
// outcome: the state moves to Error and any in-flight reply is superseded.
func (c *Controller) Submit(req models.QueryRequest) (Ticket, error) {
	req = req.Normalized()
	c.latest++

	if err := Validate(req); err != nil {
		c.state = StateError
		c.request = nil
		c.response = nil
		c.err = err
		c.elapsed = 0
		c.logger.Debug("submission rejected", slog.Uint64("seq", c.latest), slog.Any("error", err))
		c.notify()
		return Ticket{}, err
	}

	c.state = StatePending
	c.request = &req
	c.response = nil
	c.err = nil
	c.elapsed = 0
	c.logger.Debug("submission accepted",
		slog.Uint64("seq", c.latest),
		slog.String("db_path", req.Locator),
		slog.String("dialect", string(req.Dialect)),
	)
	c.notify()

	return Ticket{Seq: c.latest, Request: req}, nil
}

// Issue performs the network call for t and returns its outcome. It always
// returns, so every ticket reaches a terminal state once settled.
func (c *Controller) Issue(ctx context.Context, t Ticket) (out Outcome) {
	out.Seq = t.Seq
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Response = nil
			out.Err = apierrors.NewNetworkError("", fmt.Errorf("query client panicked: %v", r))
		}
		out.Elapsed = time.Since(start)
	}()

	resp, err := c.client.Query(ctx, t.Request)
	if err == nil && resp == nil {
		err = apierrors.NewInvalidResponseError("", "empty response")
	}
	out.Response = resp
	out.Err = err
	return out
}

// Settle applies o if it belongs to the most recently issued ticket and
// reports whether it was applied. Stale outcomes are discarded silently,
// whether they carry a response or an error.
func (c *Controller) Settle(o Outcome) bool {
	if o.Seq != c.latest || c.state != StatePending {
		c.discarded++
		c.logger.Debug("stale outcome discarded",
			slog.Uint64("seq", o.Seq),
			slog.Uint64("latest", c.latest),
		)
		return false
	}

	c.elapsed = o.Elapsed
	if o.Err != nil {
		c.state = StateError
		c.response = nil
		c.err = o.Err
		c.logger.Debug("request failed",
			slog.Uint64("seq", o.Seq),
			slog.String("kind", apierrors.KindOf(o.Err).String()),
			slog.Any("error", o.Err),
		)
	} else {
		c.state = StateSuccess
		c.response = o.Response
		c.err = nil
		c.logger.Debug("request succeeded",
			slog.Uint64("seq", o.Seq),
			slog.Int("columns", len(o.Response.Columns)),
			slog.Int("rows", len(o.Response.Rows)),
			slog.Duration("took", o.Elapsed),
		)
	}
	c.notify()
	return true
}

// Reset returns to Idle, clearing the displayed outcome. Any in-flight reply
// becomes stale.
func (c *Controller) Reset() {
	c.latest++
	c.state = StateIdle
	c.request = nil
	c.response = nil
	c.err = nil
	c.elapsed = 0
	c.notify()
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:    c.state,
		Seq:      c.latest,
		Request:  c.request,
		Response: c.response,
		Err:      c.err,
		Elapsed:  c.elapsed,
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	return c.state
}

// Latest returns the most recently assigned sequence id
func (c *Controller) Latest() uint64 {
	return c.latest
}

// Discarded returns how many stale outcomes have been dropped
func (c *Controller) Discarded() int {
	return c.discarded
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.listenerID++
	id := c.listenerID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})

	return func() {
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) notify() {
	if len(c.listeners) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, l := range c.listeners {
		l.fn(snap)
	}
}
