// Package meeting holds the canonical meeting-cost domain: the shared
// MeetingRecord, the in-memory store that owns all records, cost arithmetic,
// and TTL-based retention.
package meeting

import "time"

// DefaultScheduledMinutes is assumed when no scheduled duration is supplied.
const DefaultScheduledMinutes = 60

// Participant is one user's identity and hourly rate within a meeting.
// A zero HourlyRate means the participant has not set a rate yet.
type Participant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate"`
}

// Record is the canonical server-held state for one meeting session.
// Participants are ordered by first join and unique by ID. HostID is the
// first participant to join and never changes afterwards.
type Record struct {
	MeetingID        string        `json:"meetingId"`
	Participants     []Participant `json:"participants"`
	ScheduledMinutes int           `json:"scheduledDuration"`
	HostID           string        `json:"hostId,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

func newRecord(meetingID string, now time.Time) *Record {
	return &Record{
		MeetingID:        meetingID,
		Participants:     []Participant{},
		ScheduledMinutes: DefaultScheduledMinutes,
		CreatedAt:        now,
	}
}

// Clone returns a deep copy. Store operations hand out clones only, so no
// caller ever holds a reference into store-owned state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Participants = make([]Participant, len(r.Participants))
	copy(cp.Participants, r.Participants)
	return &cp
}

// Find returns the participant with the given id, or nil.
func (r *Record) Find(participantID string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].ID == participantID {
			return &r.Participants[i]
		}
	}
	return nil
}
