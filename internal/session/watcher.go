// Package session is the client side of the meeting-cost system: it resolves
// an identity from the host context, joins a meeting, observes the record
// through a pluggable propagation backend, and submits rate updates.
package session

import (
	"context"

	"github.com/meetingmeter/backend/internal/meeting"
)

// Session identifies one client's membership in a meeting.
type Session struct {
	MeetingID string
	UserID    string
	UserName  string
}

// Watcher is the propagation-channel contract seen from the client: deliver
// the full current record to onUpdate, repeatedly, until the context is
// cancelled. Updates for one meeting arrive in commit order; transport
// failures are retried internally on the watcher's own schedule, so Watch
// only returns on cancellation.
//
// Two backends exist: PollWatcher (HTTP pull) and PushWatcher (WebSocket
// push). Controller code is identical over either.
type Watcher interface {
	Watch(ctx context.Context, sess Session, onUpdate func(rec *meeting.Record))
}
