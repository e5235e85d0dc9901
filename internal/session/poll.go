package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/meetingmeter/backend/internal/meeting"
)

// DefaultPollInterval bounds staleness for the pull backend.
const DefaultPollInterval = 5 * time.Second

// PollWatcher implements Watcher by polling GET /meeting/:id on a fixed
// interval. The server keeps no per-observer state.
type PollWatcher struct {
	api      API
	interval time.Duration
	logger   *zap.Logger
}

// NewPollWatcher creates a pull-based watcher.
func NewPollWatcher(api API, interval time.Duration, logger *zap.Logger) *PollWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollWatcher{api: api, interval: interval, logger: logger}
}

// Watch polls until the context is cancelled. Request failures are logged
// and retried next tick; the caller keeps its last-known-good snapshot in
// the meantime.
func (w *PollWatcher) Watch(ctx context.Context, sess Session, onUpdate func(rec *meeting.Record)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rec, err := w.api.GetMeeting(ctx, sess.MeetingID)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					w.logger.Debug("poll failed", zap.String("meeting_id", sess.MeetingID), zap.Error(err))
				}
				continue
			}
			onUpdate(rec)
		}
	}
}
