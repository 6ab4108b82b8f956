package stats

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// Opponent strength tiers, keyed on the opponent's points-per-match as
// of kickoff. The three ranges partition [0, 3] with no gap and no
// overlap: every opponent lands in exactly one tier.
const (
	TopTierMinPPM = 1.9
	LowTierMaxPPM = 1.2
)

// Tier is an opponent strength class.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierTop
)

func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierMid:
		return "mid"
	case TierLow:
		return "low"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// TierFor classifies an opponent by pre-match PPM. TOP is ppm >= 1.9,
// MID is [1.2, 1.9), LOW is below 1.2.
func TierFor(ppm float64) Tier {
	switch {
	case ppm >= TopTierMinPPM:
		return TierTop
	case ppm >= LowTierMaxPPM:
		return TierMid
	default:
		return TierLow
	}
}

// TierStats is a team's record against one opponent tier: goals per
// match and points per match.
type TierStats struct {
	Matches int
	GPM     Value
	PPM     Value
}

// GoalTotals is a team's season-to-date goal summary. Ratio is
// scored/conceded, falling back to the raw scored count when the team
// has conceded nothing.
type GoalTotals struct {
	Matches  int
	Scored   Value
	Conceded Value
	Ratio    Value
}

// SeasonCalculator computes season-scoped aggregates. All of its
// windows run from the previous season's start (there is meaningful
// carry-over signal in the tail of the prior campaign) up to, and
// excluding, the asOf date.
type SeasonCalculator struct {
	repo     *MatchRepository
	registry *SeasonRegistry
	logger   *logrus.Logger
}

func NewSeasonCalculator(repo *MatchRepository, registry *SeasonRegistry, logger *logrus.Logger) *SeasonCalculator {
	return &SeasonCalculator{repo: repo, registry: registry, logger: logger}
}

// window resolves the [previousSeason.start, asOf) range for asOf. The
// firstSeason return is true when asOf falls in the earliest registered
// season, in which case the window starts at that season's own start.
func (c *SeasonCalculator) window(asOf time.Time) (start time.Time, firstSeason bool, err error) {
	season, ok := c.registry.SeasonFor(asOf)
	if !ok {
		return time.Time{}, false, fmt.Errorf("date %s falls in no registered season", asOf.Format("2006-01-02"))
	}
	prev, kind := c.registry.Previous(season.Name)
	switch kind {
	case PrevFound:
		return prev.Start, false, nil
	case PrevFirstSeason:
		return season.Start, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("season %s not in registry", season.Name)
	}
}

// SeasonPPM returns teamID's points per match between the previous
// season's start and asOf. In the earliest registered season the value
// is an explicit zero-fill and the FirstSeason flag is true; callers
// surface that flag so a model can tell "new to the league" apart from
// "winless".
func (c *SeasonCalculator) SeasonPPM(teamID int, asOf time.Time) (Value, bool) {
	start, firstSeason, err := c.window(asOf)
	if err != nil {
		return Invalid(err.Error()), false
	}
	if firstSeason {
		return Present(0), true
	}

	matches := c.repo.InRange(teamID, start, asOf)
	if len(matches) == 0 {
		return Absent(), false
	}

	var points float64
	for _, m := range matches {
		res, ok := models.ResultFor(m, teamID)
		if !ok {
			return Invalid(fmt.Sprintf("match %d has no recorded result", m.ID)), false
		}
		points += float64(res.Points)
	}
	return Present(points / float64(len(matches))), false
}

// VsTier returns teamID's record against opponents of the given tier
// within the season window. Opponents are classified by their own
// pre-match PPM at each meeting. Absent when the team faced no one in
// that tier.
func (c *SeasonCalculator) VsTier(teamID int, asOf time.Time, tier Tier) TierStats {
	start, _, err := c.window(asOf)
	if err != nil {
		return TierStats{GPM: Invalid(err.Error()), PPM: Invalid(err.Error())}
	}

	var goals, points float64
	var count int
	for _, m := range c.repo.InRange(teamID, start, asOf) {
		oppPPM, ok := m.OpponentPPM(teamID)
		if !ok || TierFor(oppPPM) != tier {
			continue
		}
		res, ok := models.ResultFor(m, teamID)
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"component": "season_calculator",
				"team_id":   teamID,
				"match_id":  m.ID,
				"tier":      tier.String(),
			}).Warn("Match in tier window has no recorded result")
			reason := fmt.Sprintf("match %d has no recorded result", m.ID)
			return TierStats{GPM: Invalid(reason), PPM: Invalid(reason)}
		}
		goals += float64(res.GoalsFor)
		points += float64(res.Points)
		count++
	}

	if count == 0 {
		return TierStats{GPM: Absent(), PPM: Absent()}
	}
	return TierStats{
		Matches: count,
		GPM:     Present(goals / float64(count)),
		PPM:     Present(points / float64(count)),
	}
}

// SeasonGoals returns teamID's goal totals within the season window.
func (c *SeasonCalculator) SeasonGoals(teamID int, asOf time.Time) GoalTotals {
	start, _, err := c.window(asOf)
	if err != nil {
		return GoalTotals{Scored: Invalid(err.Error()), Conceded: Invalid(err.Error()), Ratio: Invalid(err.Error())}
	}

	matches := c.repo.InRange(teamID, start, asOf)
	if len(matches) == 0 {
		return GoalTotals{Scored: Absent(), Conceded: Absent(), Ratio: Absent()}
	}

	var scored, conceded float64
	for _, m := range matches {
		res, ok := models.ResultFor(m, teamID)
		if !ok {
			reason := fmt.Sprintf("match %d has no recorded result", m.ID)
			return GoalTotals{Scored: Invalid(reason), Conceded: Invalid(reason), Ratio: Invalid(reason)}
		}
		scored += float64(res.GoalsFor)
		conceded += float64(res.GoalsAgainst)
	}

	ratio := scored
	if conceded > 0 {
		ratio = scored / conceded
	}
	return GoalTotals{
		Matches:  len(matches),
		Scored:   Present(scored),
		Conceded: Present(conceded),
		Ratio:    Present(ratio),
	}
}
