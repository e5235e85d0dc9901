package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meetingmeter/backend/internal/hostctx"
	"github.com/meetingmeter/backend/internal/meeting"
)

// State is the controller's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateIdentified
	StateJoined
	StateRateSubmitting
	StateLeft
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdentified:
		return "identified"
	case StateJoined:
		return "joined"
	case StateRateSubmitting:
		return "rate-submitting"
	case StateLeft:
		return "left"
	default:
		return "unknown"
	}
}

var (
	// ErrNotIdentified means Join was called before Identify.
	ErrNotIdentified = errors.New("session not identified")
	// ErrNotJoined means an operation requires a joined session.
	ErrNotJoined = errors.New("session not joined")
	// ErrSubmitInFlight means a rate submission is already pending; the
	// caller must wait for it to resolve.
	ErrSubmitInFlight = errors.New("rate submission already in flight")
)

// Controller drives one client's meeting session: identify against the host
// context, join, observe through a Watcher, submit rate changes, leave.
type Controller struct {
	api      API
	watcher  Watcher
	provider hostctx.Provider
	timeout  time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	identity   hostctx.Context
	snapshot   *meeting.Record
	isHost     bool
	submitting bool
	cancel     context.CancelFunc
	watchDone  chan struct{}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithHostContextTimeout overrides the identity resolution deadline.
func WithHostContextTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.timeout = d }
}

// NewController creates a session controller. The watcher decides the
// propagation backend (pull or push); controller logic is identical.
func NewController(api API, watcher Watcher, provider hostctx.Provider, logger *zap.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		api:      api,
		watcher:  watcher,
		provider: provider,
		timeout:  3 * time.Second,
		logger:   logger,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identify resolves the local identity and meeting id from the host context.
// A slow or failing platform degrades to an anonymous identity; Identify
// itself never fails, it only reports the degradation.
func (c *Controller) Identify(ctx context.Context) error {
	ident, err := hostctx.Resolve(ctx, c.provider, c.timeout)
	c.mu.Lock()
	if c.state == StateUninitialized {
		c.identity = ident
		c.state = StateIdentified
	}
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("host context unavailable, using anonymous identity",
			zap.String("user_id", ident.UserID),
			zap.String("meeting_id", ident.MeetingID))
	}
	return err
}

// Identity returns the resolved identity.
func (c *Controller) Identity() hostctx.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Join joins the meeting and starts observing the propagation channel.
func (c *Controller) Join(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdentified {
		state := c.state
		c.mu.Unlock()
		if state == StateUninitialized {
			return ErrNotIdentified
		}
		return nil // joined or left: no-op
	}
	sess := Session{
		MeetingID: c.identity.MeetingID,
		UserID:    c.identity.UserID,
		UserName:  c.identity.UserName,
	}
	c.mu.Unlock()

	rec, isHost, err := c.api.Join(ctx, sess.MeetingID, sess.UserID, sess.UserName)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.snapshot = rec
	c.isHost = isHost
	c.state = StateJoined
	c.cancel = cancel
	c.watchDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.watcher.Watch(watchCtx, sess, c.applyUpdate)
	}()
	return nil
}

// applyUpdate installs a record delivered by the watcher. Updates arrive in
// commit order from a single watcher goroutine.
func (c *Controller) applyUpdate(rec *meeting.Record) {
	if rec == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateJoined || c.state == StateRateSubmitting {
		c.snapshot = rec
	}
}

// SubmitRate sends a rate change. Overlapping submissions for the same
// client are rejected with ErrSubmitInFlight; a failed submission keeps the
// previous snapshot and leaves the watch loop running.
func (c *Controller) SubmitRate(ctx context.Context, rate float64) error {
	c.mu.Lock()
	if c.state != StateJoined {
		defer c.mu.Unlock()
		if c.submitting {
			return ErrSubmitInFlight
		}
		return ErrNotJoined
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.submitting = true
	c.state = StateRateSubmitting
	sess := Session{
		MeetingID: c.identity.MeetingID,
		UserID:    c.identity.UserID,
		UserName:  c.identity.UserName,
	}
	c.mu.Unlock()

	rec, err := c.api.UpdateRate(ctx, sess.MeetingID, sess.UserID, sess.UserName, rate)

	c.mu.Lock()
	c.submitting = false
	if c.state == StateRateSubmitting {
		c.state = StateJoined
	}
	if err == nil && rec != nil && (c.state == StateJoined) {
		c.snapshot = rec
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("rate submission failed", zap.Error(err))
		return err
	}
	return nil
}

// Leave stops observation and ends the session. Idempotent: leaving twice,
// or without ever joining, is a no-op. The watcher is cancelled and awaited,
// so no timer or connection survives teardown.
func (c *Controller) Leave() {
	c.mu.Lock()
	if c.state == StateLeft {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.watchDone
	c.state = StateLeft
	c.cancel = nil
	c.watchDone = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Snapshot returns the last-known-good record (a copy) and whether this
// client is host.
func (c *Controller) Snapshot() (*meeting.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone(), c.isHost
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
