package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// PrevKind tells a caller of Previous what kind of answer it got.
// "This is the first season we know about" and "we have no idea what
// season this is" are different facts and feed different downstream
// behavior, so they are never collapsed into one nil.
type PrevKind int

const (
	// PrevFound means a previous season exists and was returned.
	PrevFound PrevKind = iota
	// PrevFirstSeason means the given season is the earliest on
	// record; there is nothing before it.
	PrevFirstSeason
	// PrevUnknown means the given season is not in the registry at
	// all.
	PrevUnknown
)

func (k PrevKind) String() string {
	switch k {
	case PrevFound:
		return "found"
	case PrevFirstSeason:
		return "first_season"
	case PrevUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("prevkind(%d)", int(k))
	}
}

// SeasonRegistry answers "which season does this date fall in" and
// "what came before it". Seasons are kept sorted by start date and the
// registry is immutable after construction.
type SeasonRegistry struct {
	seasons []models.Season
}

// NewSeasonRegistry builds a registry from the given seasons. Returns
// an error on empty input, a season whose end precedes its start, or
// two seasons with overlapping date ranges.
func NewSeasonRegistry(seasons []models.Season) (*SeasonRegistry, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("season registry needs at least one season")
	}

	sorted := make([]models.Season, len(seasons))
	copy(sorted, seasons)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for i, s := range sorted {
		if s.End.Before(s.Start) {
			return nil, fmt.Errorf("season %s ends before it starts", s.Name)
		}
		if i > 0 && !sorted[i-1].End.Before(s.Start) {
			return nil, fmt.Errorf("seasons %s and %s overlap", sorted[i-1].Name, s.Name)
		}
	}

	return &SeasonRegistry{seasons: sorted}, nil
}

// Seasons returns the registered seasons in chronological order.
func (r *SeasonRegistry) Seasons() []models.Season {
	out := make([]models.Season, len(r.seasons))
	copy(out, r.seasons)
	return out
}

// SeasonFor returns the season containing date. The second return is
// false for dates in the gaps between seasons or outside the registry
// entirely (summer breaks are not part of any season).
func (r *SeasonRegistry) SeasonFor(date time.Time) (models.Season, bool) {
	for _, s := range r.seasons {
		if s.Contains(date) {
			return s, true
		}
	}
	return models.Season{}, false
}

// Previous returns the season immediately before the named one.
func (r *SeasonRegistry) Previous(name string) (models.Season, PrevKind) {
	for i, s := range r.seasons {
		if s.Name != name {
			continue
		}
		if i == 0 {
			return models.Season{}, PrevFirstSeason
		}
		return r.seasons[i-1], PrevFound
	}
	return models.Season{}, PrevUnknown
}

// PreviousFor is Previous keyed by a date instead of a season name.
func (r *SeasonRegistry) PreviousFor(date time.Time) (models.Season, PrevKind) {
	s, ok := r.SeasonFor(date)
	if !ok {
		return models.Season{}, PrevUnknown
	}
	return r.Previous(s.Name)
}

// DefaultSeasons covers the league seasons the source files span.
var DefaultSeasons = []models.Season{
	{Name: "19_20", Start: date(2019, 8, 16), End: date(2020, 7, 19)},
	{Name: "20_21", Start: date(2020, 9, 12), End: date(2021, 5, 23)},
	{Name: "21_22", Start: date(2021, 8, 13), End: date(2022, 5, 22)},
	{Name: "22_23", Start: date(2022, 8, 12), End: date(2023, 6, 4)},
	{Name: "23_24", Start: date(2023, 8, 11), End: date(2024, 5, 26)},
	{Name: "24_25", Start: date(2024, 8, 16), End: date(2025, 3, 16)},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
