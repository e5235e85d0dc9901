package profile

import (
	"testing"
	"time"
)

func TestBuildExport(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &UserProfile{ID: "u1", Name: "Alice", HourlyRate: 50}
	sessions := []MeetingSession{
		{UserID: "u1", MeetingID: "m1", DurationMinutes: 60, HourlyRate: 50, Cost: 50},
		{UserID: "u1", MeetingID: "m2", DurationMinutes: 30, HourlyRate: 50, Cost: 25},
	}

	out := BuildExport(p, sessions, now)

	if out.Profile != p {
		t.Error("export should carry the profile through")
	}
	if out.TotalMeetings != 2 {
		t.Errorf("TotalMeetings = %d, want 2", out.TotalMeetings)
	}
	if out.TotalMinutes != 90 {
		t.Errorf("TotalMinutes = %d, want 90", out.TotalMinutes)
	}
	if out.TotalCost != 75 {
		t.Errorf("TotalCost = %v, want 75", out.TotalCost)
	}
	if !out.ExportDate.Equal(now) {
		t.Errorf("ExportDate = %v, want %v", out.ExportDate, now)
	}
}

func TestBuildExportEmpty(t *testing.T) {
	out := BuildExport(nil, nil, time.Now())
	if out.TotalMeetings != 0 || out.TotalCost != 0 || out.TotalMinutes != 0 {
		t.Errorf("empty export should have zero totals, got %+v", out)
	}
	if out.Profile != nil {
		t.Error("empty export should have nil profile")
	}
}
