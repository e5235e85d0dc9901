package realtime

import (
	"encoding/json"

	"github.com/meetingmeter/backend/internal/meeting"
)

// Wire events. Client to server:
const (
	// EventJoinMeeting asks the server to (re)join the connection's meeting
	// and replay the full current record.
	EventJoinMeeting = "join-meeting"
	// EventUpdateRate replaces the sender's hourly rate.
	EventUpdateRate = "update-hourly-rate"
)

// Server to client:
const (
	// EventMeetingData carries the full record plus the userIsHost flag,
	// sent to the client that joined (or asked for a replay).
	EventMeetingData = "meeting-data"
	// EventUserJoined tells the rest of the room that someone joined.
	EventUserJoined = "user-joined"
	// EventRateUpdated broadcasts the full record after a committed mutation.
	EventRateUpdated = "participant-rate-updated"
)

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UpdateRatePayload is the body of an update-hourly-rate message.
type UpdateRatePayload struct {
	UserName   string  `json:"userName,omitempty"`
	HourlyRate float64 `json:"hourlyRate"`
}

// UserJoinedPayload is the body of a user-joined broadcast.
type UserJoinedPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// MeetingDataPayload is the body of a meeting-data message: the full record
// flattened, plus whether the receiving client is the host.
type MeetingDataPayload struct {
	*meeting.Record
	UserIsHost bool `json:"userIsHost"`
}
