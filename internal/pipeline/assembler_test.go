package pipeline

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/stats"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ip(v int) *int { return &v }

func fixtureMatches() []models.Match {
	return []models.Match{
		// Previous season (21_22): one meeting with team 2.
		{ID: 1, Date: day(2021, 9, 5), Round: 5, HomeTeamID: 1, AwayTeamID: 2,
			HomeTeam: "Legia", AwayTeam: "Lech", HomeGoals: ip(3), AwayGoals: ip(0),
			PPMHome: 1.5, PPMAway: 2.0, HomeOddsFair: 2.2, DrawOddsFair: 3.4, AwayOddsFair: 3.6},
		// Current season (22_23).
		{ID: 2, Date: day(2022, 8, 14), Round: 1, HomeTeamID: 1, AwayTeamID: 3,
			HomeTeam: "Legia", AwayTeam: "Wisla", HomeGoals: ip(1), AwayGoals: ip(1),
			PPMHome: 0, PPMAway: 0, HomeOddsFair: 1.9, DrawOddsFair: 3.5, AwayOddsFair: 4.4},
		{ID: 3, Date: day(2022, 8, 21), Round: 2, HomeTeamID: 2, AwayTeamID: 1,
			HomeTeam: "Lech", AwayTeam: "Legia", HomeGoals: ip(0), AwayGoals: ip(2),
			PPMHome: 3.0, PPMAway: 1.0, HomeOddsFair: 2.0, DrawOddsFair: 3.3, AwayOddsFair: 4.0},
	}
}

func newAssembler(t *testing.T, matches []models.Match) *Assembler {
	t.Helper()
	registry, err := stats.NewSeasonRegistry(stats.DefaultSeasons)
	require.NoError(t, err)
	return NewAssembler(stats.NewMatchRepository(matches), registry, 1, 5, testLogger())
}

func TestBuildAllOneRowPerFocalMatch(t *testing.T) {
	asm := newAssembler(t, fixtureMatches())

	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, 1, rows[0].MatchID)
	assert.Equal(t, 3, rows[2].MatchID, "rows ascend by date")
}

func TestBuildAllUnknownTeam(t *testing.T) {
	asm := NewAssembler(stats.NewMatchRepository(nil), mustRegistry(t), 1, 5, testLogger())
	_, err := asm.BuildAll("run-1", nil)
	assert.Error(t, err)
}

func mustRegistry(t *testing.T) *stats.SeasonRegistry {
	t.Helper()
	registry, err := stats.NewSeasonRegistry(stats.DefaultSeasons)
	require.NoError(t, err)
	return registry
}

func TestBuildRowBaseFields(t *testing.T) {
	asm := newAssembler(t, fixtureMatches())
	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)

	away := rows[2] // match 3, focal team away
	assert.False(t, away.Home)
	assert.Equal(t, "Legia", away.Team)
	assert.Equal(t, "Lech", away.Opponent)
	assert.Equal(t, 2, away.OpponentID)
	require.NotNil(t, away.Points)
	assert.Equal(t, 3, *away.Points)
	require.NotNil(t, away.GoalsFor)
	assert.Equal(t, 2, *away.GoalsFor)
}

func TestBuildRowFormUsesOnlyHistory(t *testing.T) {
	asm := newAssembler(t, fixtureMatches())
	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)

	// First ever match: no form.
	assert.Nil(t, rows[0].PPML5)
	assert.Nil(t, rows[0].GoalsScoredL5)

	// Third match: history is the 3-0 win and the 1-1 draw.
	row := rows[2]
	require.NotNil(t, row.PPML5)
	assert.InDelta(t, 2.0, *row.PPML5, 1e-9)
	require.NotNil(t, row.GoalsScoredL5)
	assert.InDelta(t, 2.0, *row.GoalsScoredL5, 1e-9)
	require.NotNil(t, row.GoalDiffL5)
	assert.InDelta(t, 1.5, *row.GoalDiffL5, 1e-9)
}

func TestBuildRowHeadToHead(t *testing.T) {
	asm := newAssembler(t, fixtureMatches())
	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)

	// Match 3 vs team 2: one prior meeting, the 3-0 win.
	row := rows[2]
	assert.True(t, row.H2HExists)
	require.NotNil(t, row.H2HWinRatioL5)
	assert.InDelta(t, 1.0, *row.H2HWinRatioL5, 1e-9)
	require.NotNil(t, row.H2HGoalBalanceL5)
	assert.InDelta(t, 3.0, *row.H2HGoalBalanceL5, 1e-9)
	require.NotNil(t, row.H2HPPM)
	assert.InDelta(t, 3.0, *row.H2HPPM, 1e-9)

	// Match 2 vs team 3: never met before.
	assert.False(t, rows[1].H2HExists)
	assert.Nil(t, rows[1].H2HWinRatioL5)
}

func TestBuildRowOwnMatchOddsAreNotLookAhead(t *testing.T) {
	asm := newAssembler(t, fixtureMatches())
	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)

	// Focal team away in match 3: its fair win odds are the away price.
	require.NotNil(t, rows[2].RMOddsWin)
	assert.InDelta(t, 4.0, *rows[2].RMOddsWin, 1e-9)
}

func TestBuildRowRoundsToThreeDecimals(t *testing.T) {
	matches := fixtureMatches()
	// Add a third prior result so an average of thirds shows up.
	matches = append(matches, models.Match{
		ID: 4, Date: day(2022, 8, 28), Round: 3, HomeTeamID: 1, AwayTeamID: 4,
		HomeTeam: "Legia", AwayTeam: "Pogon", HomeGoals: ip(0), AwayGoals: ip(1),
	})
	matches = append(matches, models.Match{
		ID: 5, Date: day(2022, 9, 4), Round: 4, HomeTeamID: 1, AwayTeamID: 5,
		HomeTeam: "Legia", AwayTeam: "Slask", HomeGoals: ip(1), AwayGoals: ip(0),
	})
	asm := newAssembler(t, matches)
	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)

	// Before match 4 the window holds 3-0, 1-1, 2-0: 7 points in 3,
	// stored rounded to exactly three decimals.
	fourth := rows[3]
	require.NotNil(t, fourth.PPML5)
	assert.InDelta(t, 2.333, *fourth.PPML5, 1e-9)

	// Before match 5: 3-0, 1-1, 2-0, 0-1 give 7 points in 4.
	last := rows[len(rows)-1]
	require.NotNil(t, last.PPML5)
	assert.InDelta(t, 1.75, *last.PPML5, 1e-9)
	require.NotNil(t, last.SeasonPPM)
	assert.InDelta(t, 1.75, *last.SeasonPPM, 1e-9)
}

func TestBuildRowFirstSeasonFlag(t *testing.T) {
	matches := []models.Match{{
		ID: 1, Date: day(2019, 9, 1), Round: 5, HomeTeamID: 1, AwayTeamID: 2,
		HomeTeam: "Legia", AwayTeam: "Lech", HomeGoals: ip(1), AwayGoals: ip(0),
	}}
	asm := newAssembler(t, matches)
	rows, err := asm.BuildAll("run-1", nil)
	require.NoError(t, err)

	row := rows[0]
	assert.True(t, row.FirstSeason)
	require.NotNil(t, row.SeasonPPM)
	assert.Zero(t, *row.SeasonPPM)
	assert.Equal(t, models.FlagFirstSeason, row.Flags["rm_ppm_sea"])
}

func TestBuildRowAttachesPlayers(t *testing.T) {
	asm := newAssembler(t, fixtureMatches())
	players := map[int][]models.PlayerSlot{
		2: {{Slot: 1, PlayerID: 10, Name: "Nowak", Position: "ST", Rating: 7.2, Minutes: 90}},
	}
	rows, err := asm.BuildAll("run-1", players)
	require.NoError(t, err)

	require.Len(t, rows[1].Players, 1)
	assert.Equal(t, "Nowak", rows[1].Players[0].Name)
	assert.Empty(t, rows[0].Players)
}
