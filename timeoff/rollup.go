package timeoff

// Rollup derives the display status of a range from the statuses of the days
// it covers: Pending if any day is pending, else Approved. A single pending
// day marks the whole range pending. Rejected entries are ignored; an empty
// input is Approved.
func Rollup(statuses []Status) Status {
	for _, s := range statuses {
		if s == StatusPending {
			return StatusPending
		}
	}
	return StatusApproved
}
