package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meetingmeter/backend/internal/meeting"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// Client represents a single WebSocket connection observing one meeting.
type Client struct {
	ID        string
	MeetingID string
	UserID    string
	UserName  string
	JoinedAt  time.Time // set on connect, reported to the leave hook
	hub       *Hub
	store     *meeting.Store
	conn      *websocket.Conn
	send      chan WSMessage
	logger    *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop. The
// meeting id and identity arrive as query parameters; joining happens on
// connect so a reconnect replays the full current record.
func ServeWs(hub *Hub, store *meeting.Store, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		meetingID := c.Query("meeting_id")
		userID := c.Query("user_id")
		userName := c.Query("name")
		if meetingID == "" || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "meeting_id and user_id required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:        uuid.New().String(),
			MeetingID: meetingID,
			UserID:    userID,
			UserName:  userName,
			JoinedAt:  time.Now(),
			hub:       hub,
			store:     store,
			conn:      conn,
			send:      make(chan WSMessage, 256),
			logger:    logger,
		}
		hub.Register(client)
		go client.writePump()

		client.join()
		client.readPump()
	}
}

// join upserts this user into the record, replays the full state to the
// caller, and tells the rest of the room someone arrived.
func (c *Client) join() {
	rec, isHost, err := c.store.Join(c.MeetingID, c.UserID, c.UserName)
	if err != nil {
		c.logger.Warn("ws join failed", zap.String("meeting_id", c.MeetingID), zap.Error(err))
		return
	}
	c.hub.SendToClient(c.MeetingID, c.ID, EventMeetingData, MeetingDataPayload{Record: rec, UserIsHost: isHost})
	c.hub.PublishToMeeting(c.MeetingID, EventUserJoined, UserJoinedPayload{UserID: c.UserID, UserName: c.UserName})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case EventJoinMeeting:
			// Replay for a client that wants a fresh snapshot.
			c.join()
		case EventUpdateRate:
			var payload UpdateRatePayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				continue
			}
			name := payload.UserName
			if name == "" {
				name = c.UserName
			}
			// The commit hook broadcasts the updated record to the room.
			if _, err := c.store.SetRate(c.MeetingID, c.UserID, name, payload.HourlyRate); err != nil {
				c.logger.Warn("ws rate update rejected",
					zap.String("meeting_id", c.MeetingID),
					zap.String("user_id", c.UserID),
					zap.Error(err))
			}
		default:
			// ignore
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
