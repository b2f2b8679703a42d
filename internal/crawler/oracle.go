package crawler

// IsDone reports whether collection can stop early. A missing or zero
// total never completes a run; pagination exhaustion does that instead.
// Collecting more than the reported total still counts as done.
func IsDone(collected, total int, known bool) bool {
	return known && total > 0 && collected >= total
}
