// Package dashboard implements the sentiment dashboard client controller:
// the four user-triggered operations, their confirmation gates and the
// projection of server-reported counters onto the page.
package dashboard

import "strconv"

// Display targets for the four counters. Renaming any of these is a
// breaking change for every page implementation.
const (
	TargetTotal    = "total-comments"
	TargetPositive = "positive-sentiment"
	TargetNegative = "negative-sentiment"
	TargetNeutral  = "neutral-sentiment"
)

// Stats is the counter snapshot reported by the server.
type Stats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Consistent reports whether the classified counts fit inside the total.
// The server owns this invariant; the client only observes it.
func (s Stats) Consistent() bool {
	if s.Total < 0 || s.Positive < 0 || s.Negative < 0 || s.Neutral < 0 {
		return false
	}
	return s.Positive+s.Negative+s.Neutral <= s.Total
}

// Mutation is a single text update on a display target.
type Mutation struct {
	Target string
	Text   string
}

// Render projects a snapshot onto the four display targets.
func Render(s Stats) []Mutation {
	return []Mutation{
		{Target: TargetTotal, Text: strconv.Itoa(s.Total)},
		{Target: TargetPositive, Text: strconv.Itoa(s.Positive)},
		{Target: TargetNegative, Text: strconv.Itoa(s.Negative)},
		{Target: TargetNeutral, Text: strconv.Itoa(s.Neutral)},
	}
}
