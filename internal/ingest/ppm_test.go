package ingest

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

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}

func match(id, round int, date time.Time, homeID, awayID int, hg, ag *int) models.Match {
	return models.Match{
		ID: id, Round: round, Date: date,
		HomeTeamID: homeID, AwayTeamID: awayID,
		HomeGoals: hg, AwayGoals: ag,
	}
}

func testRegistry(t *testing.T) *stats.SeasonRegistry {
	t.Helper()
	registry, err := stats.NewSeasonRegistry(stats.DefaultSeasons)
	require.NoError(t, err)
	return registry
}

func TestBackfillPPMFirstMatchIsZero(t *testing.T) {
	matches := []models.Match{
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(2), intPtr(0)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	assert.Zero(t, out[0].PPMHome)
	assert.Zero(t, out[0].PPMAway)
}

func TestBackfillPPMAccumulates(t *testing.T) {
	matches := []models.Match{
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(2), intPtr(0)), // 1 wins
		match(2, 2, day(2022, 8, 21), 1, 3, intPtr(1), intPtr(1)), // 1 draws
		match(3, 3, day(2022, 8, 28), 2, 1, intPtr(0), intPtr(0)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	// Round 2: team 1 has 3 points from 1 match.
	assert.InDelta(t, 3.0, out[1].PPMHome, 1e-9)
	assert.Zero(t, out[1].PPMAway, "team 3's first match")
	// Round 3: team 1 has 4 points from 2, team 2 has 0 from 1.
	assert.InDelta(t, 2.0, out[2].PPMAway, 1e-9)
	assert.Zero(t, out[2].PPMHome)
}

func TestBackfillPPMNeverUsesOwnMatch(t *testing.T) {
	// Team 1 wins 9-0 in round 2; its round-2 PPM must reflect only
	// the round-1 draw.
	matches := []models.Match{
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(1), intPtr(1)),
		match(2, 2, day(2022, 8, 21), 1, 3, intPtr(9), intPtr(0)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	assert.InDelta(t, 1.0, out[1].PPMHome, 1e-9)
}

func TestBackfillPPMUnplayedSkipsTableUpdate(t *testing.T) {
	matches := []models.Match{
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(3), intPtr(0)),
		match(2, 2, day(2022, 8, 21), 1, 3, nil, nil),
		match(3, 3, day(2022, 8, 28), 1, 4, intPtr(0), intPtr(2)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	// The unplayed round-2 fixture still gets a pre-match PPM.
	assert.InDelta(t, 3.0, out[1].PPMHome, 1e-9)
	// Round 3 sees 3 points from 1 played match, not 2.
	assert.InDelta(t, 3.0, out[2].PPMHome, 1e-9)
}

func TestBackfillPPMResetsAcrossSeasons(t *testing.T) {
	matches := []models.Match{
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(3), intPtr(0)),
		match(2, 1, day(2023, 8, 12), 1, 2, intPtr(0), intPtr(0)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	assert.Zero(t, out[1].PPMHome, "new season starts from an empty table")
	assert.Zero(t, out[1].PPMAway)
}

func TestBackfillPPMOrdersByRoundThenDate(t *testing.T) {
	// Round 2 listed first in the file; the walk must still process
	// round 1 before it.
	matches := []models.Match{
		match(2, 2, day(2022, 8, 21), 1, 3, intPtr(0), intPtr(0)),
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(3), intPtr(0)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	assert.InDelta(t, 3.0, out[0].PPMHome, 1e-9)
	assert.Zero(t, out[1].PPMHome)
}

func TestBackfillPPMRoundsToThreeDecimals(t *testing.T) {
	matches := []models.Match{
		match(1, 1, day(2022, 8, 14), 1, 2, intPtr(2), intPtr(0)),
		match(2, 2, day(2022, 8, 21), 3, 1, intPtr(1), intPtr(1)),
		match(3, 3, day(2022, 8, 28), 1, 4, intPtr(0), intPtr(0)),
		match(4, 4, day(2022, 9, 4), 4, 1, intPtr(0), intPtr(1)),
	}
	out := BackfillPPM(matches, testRegistry(t), discardLogger())

	// Team 1 before round 4: 3+1+1 points over 3 matches.
	assert.InDelta(t, 1.667, out[3].PPMAway, 1e-9)
}
