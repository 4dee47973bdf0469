package listview

// Stats are the aggregate counters displayed next to a list.
type Stats struct {
	Total       int `json:"total_entries"`
	Verified    int `json:"verified_entry"`
	NotVerified int `json:"not_verified_entry"`
}

// ApplyDelete adjusts the counters after a single row was removed
// locally, without refetching the list. The total and exactly one of the
// two category counters drop by one; no counter ever goes below zero.
func (s *Stats) ApplyDelete(verified bool) {
	s.Total = decrement(s.Total)
	if verified {
		s.Verified = decrement(s.Verified)
		return
	}
	s.NotVerified = decrement(s.NotVerified)
}

func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
