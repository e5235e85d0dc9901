package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// SessionJoinHandler is called when a client connects to a meeting.
type SessionJoinHandler func(meetingID, userID string)

// SessionLeaveHandler is called when a client disconnects, with the time it
// joined. The participant stays in the meeting record; only the subscription
// is gone.
type SessionLeaveHandler func(meetingID, userID string, joinedAt time.Time)

// Hub maintains meetingID -> set of connections and broadcasts records.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// meetingID -> map[clientID]*Client
	meetings map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per meeting
	mu       sync.RWMutex
	logger   *zap.Logger
	pub      Publisher
	sub      Subscriber
	onJoin   SessionJoinHandler
	onLeave  SessionLeaveHandler
}

// Publisher publishes meeting events for other instances.
type Publisher interface {
	PublishMeetingEvent(meetingID, event string, payload []byte) error
}

// Subscriber subscribes to a meeting's channel and invokes handler for
// incoming events. Returns a cancel function.
type Subscriber interface {
	SubscribeMeeting(meetingID string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for
// single-instance deployments and tests.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		meetings: make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		pub:      pub,
		sub:      sub,
	}
}

// SetSessionHooks registers join/leave callbacks (e.g. session history).
func (h *Hub) SetSessionHooks(onJoin SessionJoinHandler, onLeave SessionLeaveHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onJoin = onJoin
	h.onLeave = onLeave
}

// Register adds a client to a meeting room. Starts the Redis subscription
// for this meeting when the first client arrives.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.meetings[c.MeetingID] == nil {
		h.meetings[c.MeetingID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeMeeting(c.MeetingID, func(event string, payload []byte) {
				h.BroadcastToMeeting(c.MeetingID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.MeetingID] = cancel
			} else {
				h.logger.Warn("meeting channel subscribe failed", zap.String("meeting_id", c.MeetingID), zap.Error(err))
			}
		}
	}
	h.meetings[c.MeetingID][c.ID] = c
	onJoin := h.onJoin
	h.mu.Unlock()
	if onJoin != nil {
		onJoin(c.MeetingID, c.UserID)
	}
	h.logger.Debug("client joined meeting", zap.String("client_id", c.ID), zap.String("meeting_id", c.MeetingID))
}

// Unregister removes a client from a meeting room. Cancels the Redis
// subscription when the last client leaves. The meeting record itself is
// untouched; participants persist for rejoin.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	m, ok := h.meetings[c.MeetingID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := m[c.ID]; !present {
		h.mu.Unlock()
		return
	}
	delete(m, c.ID)
	if len(m) == 0 {
		delete(h.meetings, c.MeetingID)
		if cancel, ok := h.subs[c.MeetingID]; ok {
			cancel()
			delete(h.subs, c.MeetingID)
		}
	}
	onLeave := h.onLeave
	h.mu.Unlock()
	if onLeave != nil {
		onLeave(c.MeetingID, c.UserID, c.JoinedAt)
	}
	h.logger.Debug("client left meeting", zap.String("client_id", c.ID), zap.String("meeting_id", c.MeetingID))
}

// BroadcastToMeeting sends a message to all clients in a meeting (local only).
// A client whose buffer is full is skipped; one slow subscriber never blocks
// delivery to the rest.
func (h *Hub) BroadcastToMeeting(meetingID, event string, payload interface{}) {
	data := marshalPayload(payload)
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.meetings[meetingID]
	targets := make([]*Client, 0, len(clients))
	for _, c := range clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToMeeting routes a broadcast through Redis when configured, so the
// subscriber callback delivers it exactly once to every instance including
// this one. Without Redis it broadcasts locally. A publish failure falls back
// to local delivery so connected observers are never starved.
func (h *Hub) PublishToMeeting(meetingID, event string, payload interface{}) {
	data := marshalPayload(payload)
	if h.pub != nil {
		err := h.pub.PublishMeetingEvent(meetingID, event, data)
		if err == nil {
			return
		}
		h.logger.Warn("meeting event publish failed", zap.String("meeting_id", meetingID), zap.Error(err))
	}
	h.BroadcastToMeeting(meetingID, event, json.RawMessage(data))
}

// SendToClient sends a message to a single client in a meeting.
func (h *Hub) SendToClient(meetingID, clientID, event string, payload interface{}) {
	msg := WSMessage{Event: event, Data: marshalPayload(payload)}
	h.mu.RLock()
	c := h.meetings[meetingID][clientID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// AudienceCount returns the number of connected clients in a meeting.
func (h *Hub) AudienceCount(meetingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.meetings[meetingID])
}

func marshalPayload(payload interface{}) []byte {
	switch v := payload.(type) {
	case []byte:
		return v
	case json.RawMessage:
		return v
	default:
		data, _ := json.Marshal(payload)
		return data
	}
}
