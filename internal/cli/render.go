package cli

import (
	"fmt"
	"io"

	"github.com/meetingmeter/backend/internal/meeting"
)

// renderRecord prints the meeting roster with per-participant and total cost
// for the elapsed minutes.
func renderRecord(w io.Writer, rec *meeting.Record, elapsedMinutes float64) {
	if rec == nil {
		fmt.Fprintln(w, "no meeting data yet")
		return
	}
	fmt.Fprintf(w, "meeting %s — %d participant(s), %.0f min elapsed\n", rec.MeetingID, len(rec.Participants), elapsedMinutes)
	for _, p := range rec.Participants {
		marker := " "
		if p.ID == rec.HostID {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-20s %8.2f/h %10.2f\n", marker, p.Name, p.HourlyRate, meeting.IndividualCost(p, elapsedMinutes))
	}
	fmt.Fprintf(w, "  total: %.2f\n", meeting.TotalCost(rec, elapsedMinutes))
}
