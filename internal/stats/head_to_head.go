package stats

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// H2HSummary is team a's record across its last N meetings with team b.
// Win ratio is wins over meetings, goal balance is total goals for
// minus total goals against from a's perspective.
type H2HSummary struct {
	Meetings    int
	WinRatio    Value
	PPM         Value
	GoalBalance Value
}

// HeadToHeadCalculator aggregates the direct meetings of two teams,
// home and away pooled, always from the first team's perspective.
type HeadToHeadCalculator struct {
	repo   *MatchRepository
	logger *logrus.Logger
}

func NewHeadToHeadCalculator(repo *MatchRepository, logger *logrus.Logger) *HeadToHeadCalculator {
	return &HeadToHeadCalculator{repo: repo, logger: logger}
}

// Meetings returns up to limit meetings of a and b strictly before
// asOf, most recent first. limit <= 0 means no cap.
func (c *HeadToHeadCalculator) Meetings(a, b int, asOf time.Time, limit int) []models.Match {
	meetings := c.repo.MeetingsBefore(a, b, asOf)
	if limit > 0 && len(meetings) > limit {
		meetings = meetings[:limit]
	}
	return meetings
}

// HasPriorMeeting reports whether a and b ever met before asOf. The
// imputer keys its head-to-head zero-fill on this.
func (c *HeadToHeadCalculator) HasPriorMeeting(a, b int, asOf time.Time) bool {
	return len(c.repo.MeetingsBefore(a, b, asOf)) > 0
}

// LastN summarizes a's record over the last n meetings with b before
// asOf. All-Absent when the teams never met.
func (c *HeadToHeadCalculator) LastN(a, b int, asOf time.Time, n int) H2HSummary {
	meetings := c.Meetings(a, b, asOf, n)
	return c.summarize(a, meetings)
}

// OverallPPM is a's points per match across every meeting with b
// before asOf.
func (c *HeadToHeadCalculator) OverallPPM(a, b int, asOf time.Time) Value {
	return c.summarize(a, c.Meetings(a, b, asOf, 0)).PPM
}

func (c *HeadToHeadCalculator) summarize(a int, meetings []models.Match) H2HSummary {
	if len(meetings) == 0 {
		return H2HSummary{
			WinRatio:    Absent(),
			PPM:         Absent(),
			GoalBalance: Absent(),
		}
	}

	var wins, points, balance float64
	for _, m := range meetings {
		res, ok := models.ResultFor(m, a)
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"component": "h2h_calculator",
				"team_id":   a,
				"match_id":  m.ID,
			}).Warn("Meeting has no recorded result")
			reason := fmt.Sprintf("match %d has no recorded result", m.ID)
			return H2HSummary{
				Meetings:    len(meetings),
				WinRatio:    Invalid(reason),
				PPM:         Invalid(reason),
				GoalBalance: Invalid(reason),
			}
		}
		if res.Points == models.WinPoints {
			wins++
		}
		points += float64(res.Points)
		balance += float64(res.GoalsFor - res.GoalsAgainst)
	}

	count := float64(len(meetings))
	return H2HSummary{
		Meetings:    len(meetings),
		WinRatio:    Present(wins / count),
		PPM:         Present(points / count),
		GoalBalance: Present(balance),
	}
}
