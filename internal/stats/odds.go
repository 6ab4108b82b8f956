package stats

import (
	"fmt"
	"time"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// OddsCalculator derives odds features from de-margined bookmaker
// prices. Pre-match odds for a row's own fixture are published before
// kickoff, so using them for that row does not leak the result.
type OddsCalculator struct {
	repo *MatchRepository
}

func NewOddsCalculator(repo *MatchRepository) *OddsCalculator {
	return &OddsCalculator{repo: repo}
}

// WinOdds returns teamID's fair win odds for match m.
func (c *OddsCalculator) WinOdds(m models.Match, teamID int) Value {
	odds, ok := m.FairWinOdds(teamID)
	if !ok {
		return Absent()
	}
	return Present(odds)
}

// AvgWinOddsLastN averages teamID's fair win odds over its last n
// matches before asOf. A window match with no usable odds makes the
// whole average Invalid; the imputer decides what to do with that.
func (c *OddsCalculator) AvgWinOddsLastN(teamID int, asOf time.Time, n int) Value {
	return c.avgLastN(teamID, asOf, n, func(m models.Match) (float64, bool) {
		return m.FairWinOdds(teamID)
	})
}

// AvgLossOddsLastN averages the fair odds on teamID losing over its
// last n matches before asOf.
func (c *OddsCalculator) AvgLossOddsLastN(teamID int, asOf time.Time, n int) Value {
	return c.avgLastN(teamID, asOf, n, func(m models.Match) (float64, bool) {
		return m.FairLossOdds(teamID)
	})
}

func (c *OddsCalculator) avgLastN(teamID int, asOf time.Time, n int, pick func(models.Match) (float64, bool)) Value {
	if n <= 0 {
		return Invalid("window size must be positive")
	}
	history := c.repo.BeforeFor(teamID, asOf)
	if len(history) == 0 {
		return Absent()
	}
	if len(history) > n {
		history = history[:n]
	}

	var sum float64
	for _, m := range history {
		odds, ok := pick(m)
		if !ok {
			return Invalid(fmt.Sprintf("match %d has no usable odds", m.ID))
		}
		sum += odds
	}
	return Present(sum / float64(len(history)))
}
