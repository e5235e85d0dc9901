// Package hostctx abstracts the host platform's context: who the local user
// is, which meeting they are in, the UI theme, and optional scheduled times.
// The platform call is fallible and possibly slow, so resolution always runs
// under a deadline with a synthetic anonymous fallback.
package hostctx

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meetingmeter/backend/internal/meeting"
)

// ErrUnavailable means the host platform did not answer in time or errored.
// Callers fall back to an anonymous identity; this error is never fatal.
var ErrUnavailable = errors.New("host context unavailable")

// Theme is the host platform UI theme.
type Theme string

const (
	ThemeDefault  Theme = "default"
	ThemeDark     Theme = "dark"
	ThemeContrast Theme = "contrast"
)

// ParseTheme maps a platform theme string onto the known set, defaulting to
// the light theme for anything unrecognized.
func ParseTheme(s string) Theme {
	switch s {
	case "dark":
		return ThemeDark
	case "contrast":
		return ThemeContrast
	default:
		return ThemeDefault
	}
}

// Context is what the host platform knows about the local session.
type Context struct {
	UserID         string
	UserName       string
	MeetingID      string
	Theme          Theme
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
}

// ScheduledMinutes derives the meeting length from the platform's scheduled
// start/end, falling back to the default when either is missing.
func (c Context) ScheduledMinutes() int {
	if c.ScheduledStart == nil || c.ScheduledEnd == nil {
		return meeting.DefaultScheduledMinutes
	}
	m := int(c.ScheduledEnd.Sub(*c.ScheduledStart).Minutes())
	if m <= 0 {
		return meeting.DefaultScheduledMinutes
	}
	return m
}

// Provider yields the host platform context. Implementations may block; the
// caller applies the deadline.
type Provider interface {
	Context(ctx context.Context) (*Context, error)
}

// Static is a fixed-context provider for tests and the CLI.
type Static struct {
	Ctx Context
	Err error
}

// Context returns the configured context or error.
func (s Static) Context(context.Context) (*Context, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	c := s.Ctx
	return &c, nil
}

// Anonymous returns a synthetic identity used when the platform never
// answers: a generated user id, a demo display name, and the shared fallback
// meeting id.
func Anonymous() Context {
	return Context{
		UserID:    "anon-" + uuid.New().String(),
		UserName:  "Demo User",
		MeetingID: "demo-meeting",
		Theme:     ThemeDefault,
	}
}

// Resolve asks the provider for the platform context under the given
// deadline. On timeout or error it returns the anonymous fallback and
// ErrUnavailable so callers can log the degradation; the returned context is
// always usable.
func Resolve(ctx context.Context, p Provider, timeout time.Duration) (Context, error) {
	if p == nil {
		return Anonymous(), ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		ctx *Context
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := p.Context(ctx)
		ch <- result{ctx: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return Anonymous(), ErrUnavailable
	case res := <-ch:
		if res.err != nil || res.ctx == nil {
			return Anonymous(), ErrUnavailable
		}
		out := *res.ctx
		if out.UserID == "" {
			out.UserID = "anon-" + uuid.New().String()
		}
		if out.UserName == "" {
			out.UserName = "Demo User"
		}
		if out.MeetingID == "" {
			out.MeetingID = "demo-meeting"
		}
		return out, nil
	}
}
