package models

import "time"

// Season is one league season with its inclusive calendar bounds.
type Season struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the season, bounds inclusive.
func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}
