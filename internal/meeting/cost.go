package meeting

// IndividualCost returns what one participant costs over the given number of
// minutes. Pure arithmetic; at 60 minutes it equals the hourly rate exactly.
func IndividualCost(p Participant, minutes float64) float64 {
	return p.HourlyRate * minutes / 60
}

// TotalCost sums IndividualCost across all participants. An empty record
// costs zero.
func TotalCost(r *Record, minutes float64) float64 {
	if r == nil {
		return 0
	}
	var total float64
	for _, p := range r.Participants {
		total += IndividualCost(p, minutes)
	}
	return total
}
