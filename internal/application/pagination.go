package application

import "strconv"

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
	MaxSearchLimit   = 50
	DefaultRadiusKm  = 5.0
)

// ListQuery is the filter and window of a followers/following listing.
type ListQuery struct {
	SearchText string
	Limit      int
	Offset     int
}

// Normalize applies defaults: limit <= 0 becomes DefaultListLimit and is
// capped at MaxListLimit; a negative offset becomes 0.
func (q ListQuery) Normalize() ListQuery {
	q.Limit = clampLimit(q.Limit, MaxListLimit)
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > max {
		return max
	}
	return limit
}

// ParseIntDefault parses s, returning def when s is empty or not an integer.
func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// window returns the [offset, offset+limit) slice bounds clipped to n.
func window(n, offset, limit int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
