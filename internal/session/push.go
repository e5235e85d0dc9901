package session

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meetingmeter/backend/internal/meeting"
	"github.com/meetingmeter/backend/internal/realtime"
)

// DefaultReconnectDelay spaces out redial attempts after a dropped
// subscription.
const DefaultReconnectDelay = 2 * time.Second

// PushWatcher implements Watcher over a WebSocket subscription. Connecting
// joins the meeting server-side, so every (re)connect replays the full
// current record; afterwards each committed mutation arrives as its own
// message.
type PushWatcher struct {
	serverURL      string
	reconnectDelay time.Duration
	logger         *zap.Logger
}

// NewPushWatcher creates a push-based watcher against the given server base
// URL (http/https schemes are rewritten to ws/wss).
func NewPushWatcher(serverURL string, logger *zap.Logger) *PushWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushWatcher{
		serverURL:      serverURL,
		reconnectDelay: DefaultReconnectDelay,
		logger:         logger,
	}
}

// Watch dials, reads record updates, and redials on any failure until the
// context is cancelled. Indefinite transport failure is tolerated; the
// caller keeps its last-known-good snapshot.
func (w *PushWatcher) Watch(ctx context.Context, sess Session, onUpdate func(rec *meeting.Record)) {
	target := w.wsURL(sess)
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
		if err != nil {
			w.logger.Debug("subscription dial failed", zap.String("meeting_id", sess.MeetingID), zap.Error(err))
			if !sleepCtx(ctx, w.reconnectDelay) {
				return
			}
			continue
		}
		w.readLoop(ctx, conn, onUpdate)
		_ = conn.Close()
		if !sleepCtx(ctx, w.reconnectDelay) {
			return
		}
	}
}

// readLoop consumes messages until the connection breaks or the context is
// cancelled. Closing the connection from the ctx goroutine unblocks ReadJSON
// so teardown is prompt.
func (w *PushWatcher) readLoop(ctx context.Context, conn *websocket.Conn, onUpdate func(rec *meeting.Record)) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var msg realtime.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Event {
		case realtime.EventMeetingData, realtime.EventRateUpdated:
			var rec meeting.Record
			if err := json.Unmarshal(msg.Data, &rec); err != nil {
				w.logger.Debug("bad record payload", zap.Error(err))
				continue
			}
			onUpdate(&rec)
		default:
			// user-joined and anything newer: the next record broadcast
			// carries the state, nothing to do here.
		}
	}
}

func (w *PushWatcher) wsURL(sess Session) string {
	base := w.serverURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	q := url.Values{}
	q.Set("meeting_id", sess.MeetingID)
	q.Set("user_id", sess.UserID)
	q.Set("name", sess.UserName)
	return strings.TrimSuffix(base, "/") + "/ws?" + q.Encode()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
