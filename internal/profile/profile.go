// Package profile stores per-user data outside the meeting core: the user's
// saved profile (a simple key-value map in Redis) and their finished meeting
// sessions (Postgres), plus a JSON export aggregating both.
package profile

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the locally persisted user record.
type UserProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	HourlyRate    float64   `json:"hourlyRate"`
	TotalMeetings int       `json:"totalMeetings"`
	TotalCost     float64   `json:"totalCost"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// MeetingSession is one finished meeting from the user's point of view.
type MeetingSession struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName"`
	MeetingID       string    `json:"meetingId"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration"`
	HourlyRate      float64   `json:"hourlyRate"`
	Cost            float64   `json:"cost"`
	Participants    int       `json:"participants"`
}

// Export is the downloadable aggregate of a user's data.
type Export struct {
	Profile       *UserProfile     `json:"profile"`
	Sessions      []MeetingSession `json:"sessions"`
	ExportDate    time.Time        `json:"exportDate"`
	TotalCost     float64          `json:"totalCost"`
	TotalMeetings int              `json:"totalMeetings"`
	TotalMinutes  int              `json:"totalMinutes"`
}

// BuildExport aggregates a profile and its sessions. Totals come from the
// session list, not the profile counters.
func BuildExport(p *UserProfile, sessions []MeetingSession, now time.Time) Export {
	out := Export{
		Profile:       p,
		Sessions:      sessions,
		ExportDate:    now,
		TotalMeetings: len(sessions),
	}
	for _, s := range sessions {
		out.TotalCost += s.Cost
		out.TotalMinutes += s.DurationMinutes
	}
	return out
}
