package stats

import (
	"sort"
	"time"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// MatchRepository is an immutable, date-sorted snapshot of matches.
// Every query that takes an asOf date is strictly exclusive: a match
// played on asOf itself is never part of the history returned for
// asOf. That one rule is what keeps every downstream feature free of
// look-ahead.
type MatchRepository struct {
	matches []models.Match
}

// NewMatchRepository copies matches into a snapshot sorted ascending by
// date (id as tiebreaker). The caller's slice is not retained.
func NewMatchRepository(matches []models.Match) *MatchRepository {
	sorted := make([]models.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &MatchRepository{matches: sorted}
}

// Len returns the number of matches in the snapshot.
func (r *MatchRepository) Len() int {
	return len(r.matches)
}

// All returns every match, ascending by date.
func (r *MatchRepository) All() []models.Match {
	out := make([]models.Match, len(r.matches))
	copy(out, r.matches)
	return out
}

// ForTeam returns teamID's matches ascending by date. An unknown team
// yields an empty slice, not an error.
func (r *MatchRepository) ForTeam(teamID int) []models.Match {
	var out []models.Match
	for _, m := range r.matches {
		if m.Involves(teamID) {
			out = append(out, m)
		}
	}
	return out
}

// BeforeFor returns teamID's matches strictly before asOf, most recent
// first. This is the shape the rolling-window calculators consume.
func (r *MatchRepository) BeforeFor(teamID int, asOf time.Time) []models.Match {
	var out []models.Match
	for i := len(r.matches) - 1; i >= 0; i-- {
		m := r.matches[i]
		if !m.Date.Before(asOf) {
			continue
		}
		if m.Involves(teamID) {
			out = append(out, m)
		}
	}
	return out
}

// InRange returns teamID's matches with start <= date < endExcl,
// ascending by date.
func (r *MatchRepository) InRange(teamID int, start, endExcl time.Time) []models.Match {
	var out []models.Match
	for _, m := range r.matches {
		if m.Date.Before(start) || !m.Date.Before(endExcl) {
			continue
		}
		if m.Involves(teamID) {
			out = append(out, m)
		}
	}
	return out
}

// MeetingsBefore returns the matches between teams a and b strictly
// before asOf, most recent first, regardless of which side hosted.
func (r *MatchRepository) MeetingsBefore(a, b int, asOf time.Time) []models.Match {
	var out []models.Match
	for i := len(r.matches) - 1; i >= 0; i-- {
		m := r.matches[i]
		if !m.Date.Before(asOf) {
			continue
		}
		if m.Involves(a) && m.Involves(b) {
			out = append(out, m)
		}
	}
	return out
}

// ByID returns the match with the given id.
func (r *MatchRepository) ByID(id int) (models.Match, bool) {
	for _, m := range r.matches {
		if m.ID == id {
			return m, true
		}
	}
	return models.Match{}, false
}
