package stats

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// FormStats is a team's rolling form over its last N matches before a
// date. Either all fields are Present or none are; a window with a
// broken match poisons every aggregate computed from it.
type FormStats struct {
	Matches          int
	GoalsScoredAvg   Value
	GoalsConcededAvg Value
	GoalDiffAvg      Value
	PPM              Value
	OppPPMAvg        Value
}

// FormCalculator computes rolling last-N form from a match snapshot.
type FormCalculator struct {
	repo   *MatchRepository
	logger *logrus.Logger
}

func NewFormCalculator(repo *MatchRepository, logger *logrus.Logger) *FormCalculator {
	return &FormCalculator{repo: repo, logger: logger}
}

// LastN aggregates teamID's last n matches strictly before asOf.
// Returns all-Absent when the team has no prior matches, and
// all-Invalid when any match in the window lacks recorded goals. Fewer
// than n prior matches is fine; the averages just cover what exists.
func (c *FormCalculator) LastN(teamID int, asOf time.Time, n int) FormStats {
	if n <= 0 {
		return invalidForm(0, "window size must be positive")
	}

	history := c.repo.BeforeFor(teamID, asOf)
	if len(history) == 0 {
		return FormStats{
			GoalsScoredAvg:   Absent(),
			GoalsConcededAvg: Absent(),
			GoalDiffAvg:      Absent(),
			PPM:              Absent(),
			OppPPMAvg:        Absent(),
		}
	}
	if len(history) > n {
		history = history[:n]
	}

	var scored, conceded, points, oppPPM float64
	for _, m := range history {
		res, ok := models.ResultFor(m, teamID)
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"component": "form_calculator",
				"team_id":   teamID,
				"match_id":  m.ID,
			}).Warn("Match in form window has no recorded result")
			return invalidForm(len(history), fmt.Sprintf("match %d has no recorded result", m.ID))
		}
		scored += float64(res.GoalsFor)
		conceded += float64(res.GoalsAgainst)
		points += float64(res.Points)
		oppPPM += res.OpponentPPM
	}

	count := float64(len(history))
	return FormStats{
		Matches:          len(history),
		GoalsScoredAvg:   Present(scored / count),
		GoalsConcededAvg: Present(conceded / count),
		GoalDiffAvg:      Present((scored - conceded) / count),
		PPM:              Present(points / count),
		OppPPMAvg:        Present(oppPPM / count),
	}
}

func invalidForm(matches int, reason string) FormStats {
	return FormStats{
		Matches:          matches,
		GoalsScoredAvg:   Invalid(reason),
		GoalsConcededAvg: Invalid(reason),
		GoalDiffAvg:      Invalid(reason),
		PPM:              Invalid(reason),
		OppPPMAvg:        Invalid(reason),
	}
}
