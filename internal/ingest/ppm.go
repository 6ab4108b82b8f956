package ingest

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/stats"
)

// BackfillPPM attaches each side's points-per-match as of kickoff to
// every match, walking each season in schedule order and accumulating a
// running points/played table per team. A team's first match of the
// season gets 0.0: the table resets at the season boundary. Unplayed
// matches receive a PPM (it was known at kickoff) but contribute no
// points to the table.
//
// The input slice is not modified; the returned slice carries the
// backfilled values.
func BackfillPPM(matches []models.Match, registry *stats.SeasonRegistry, logger *logrus.Logger) []models.Match {
	out := make([]models.Match, len(matches))
	copy(out, matches)

	bySeason := make(map[string][]int)
	for i, m := range out {
		season, ok := registry.SeasonFor(m.Date)
		if !ok {
			logger.WithFields(logrus.Fields{
				"component": "ppm_backfill",
				"match_id":  m.ID,
				"date":      m.Date.Format("2006-01-02"),
			}).Warn("Match date falls in no registered season, PPM left at zero")
			continue
		}
		bySeason[season.Name] = append(bySeason[season.Name], i)
	}

	type tally struct {
		points int
		played int
	}

	for _, idxs := range bySeason {
		sort.SliceStable(idxs, func(a, b int) bool {
			ma, mb := out[idxs[a]], out[idxs[b]]
			if ma.Round != mb.Round {
				return ma.Round < mb.Round
			}
			return ma.Date.Before(mb.Date)
		})

		table := make(map[int]*tally)
		at := func(teamID int) *tally {
			t, ok := table[teamID]
			if !ok {
				t = &tally{}
				table[teamID] = t
			}
			return t
		}

		for _, i := range idxs {
			m := &out[i]
			home, away := at(m.HomeTeamID), at(m.AwayTeamID)
			m.PPMHome = prematchPPM(home.points, home.played)
			m.PPMAway = prematchPPM(away.points, away.played)

			if !m.Played() {
				continue
			}
			res, _ := models.ResultFor(*m, m.HomeTeamID)
			home.points += res.Points
			home.played++
			res, _ = models.ResultFor(*m, m.AwayTeamID)
			away.points += res.Points
			away.played++
		}
	}
	return out
}

func prematchPPM(points, played int) float64 {
	if played == 0 {
		return 0.0
	}
	return math.Round(float64(points)/float64(played)*1000) / 1000
}
