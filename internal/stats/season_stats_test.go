package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkowalczyk/matchforge/internal/models"
)

func TestTierForIsAStrictPartition(t *testing.T) {
	tests := []struct {
		ppm  float64
		want Tier
	}{
		{0.0, TierLow},
		{1.19, TierLow},
		{1.2, TierMid},
		{1.89, TierMid},
		{1.9, TierTop},
		{3.0, TierTop},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.ppm), "ppm %.2f", tt.ppm)
	}

	// Sweep: every value lands in exactly one tier.
	for ppm := 0.0; ppm <= 3.0; ppm += 0.01 {
		hits := 0
		for _, tier := range []Tier{TierLow, TierMid, TierTop} {
			if TierFor(ppm) == tier {
				hits++
			}
		}
		assert.Equal(t, 1, hits)
	}
}

func newSeasonCalc(t *testing.T, matches []models.Match) *SeasonCalculator {
	t.Helper()
	registry, err := NewSeasonRegistry(DefaultSeasons)
	require.NoError(t, err)
	return NewSeasonCalculator(NewMatchRepository(matches), registry, testLogger())
}

func TestSeasonPPMWindowStartsAtPreviousSeason(t *testing.T) {
	calc := newSeasonCalc(t, []models.Match{
		// Two seasons back, outside the window.
		mkMatch(day(2020, 10, 1), 1, 2, 5, 0),
		// Previous season (21_22), inside the window: win.
		mkMatch(day(2021, 9, 1), 1, 3, 2, 0),
		// Current season (22_23), inside the window: draw.
		mkMatch(day(2022, 9, 1), 1, 4, 1, 1),
	})

	ppm, firstSeason := calc.SeasonPPM(1, day(2022, 10, 1))
	require.True(t, ppm.Ok())
	assert.False(t, firstSeason)
	assert.InDelta(t, 2.0, ppm.V, 1e-9, "win and draw over two matches")
}

func TestSeasonPPMFirstSeasonIsFlaggedZero(t *testing.T) {
	calc := newSeasonCalc(t, []models.Match{
		mkMatch(day(2019, 9, 1), 1, 2, 2, 0),
	})

	ppm, firstSeason := calc.SeasonPPM(1, day(2019, 10, 1))
	require.True(t, ppm.Ok())
	assert.True(t, firstSeason)
	assert.Zero(t, ppm.V, "earliest season zero-fills rather than inventing history")
}

func TestSeasonPPMOutsideAnySeasonIsInvalid(t *testing.T) {
	calc := newSeasonCalc(t, nil)

	ppm, _ := calc.SeasonPPM(1, day(2021, 7, 1))
	assert.Equal(t, StatusInvalid, ppm.Status)
}

func TestSeasonPPMNoMatchesIsAbsent(t *testing.T) {
	calc := newSeasonCalc(t, nil)

	ppm, firstSeason := calc.SeasonPPM(1, day(2022, 10, 1))
	assert.Equal(t, StatusAbsent, ppm.Status)
	assert.False(t, firstSeason)
}

func TestVsTierClassifiesByOpponentPrematchPPM(t *testing.T) {
	calc := newSeasonCalc(t, []models.Match{
		// Team 1 beats a top side 2-0.
		mkMatch(day(2022, 9, 1), 1, 2, 2, 0, withPPM(1.0, 2.5)),
		// Draws a top side 1-1 away.
		mkMatch(day(2022, 9, 8), 3, 1, 1, 1, withPPM(1.9, 1.1)),
		// Beats a low side 4-0; must not leak into the top tier.
		mkMatch(day(2022, 9, 15), 1, 4, 4, 0, withPPM(1.2, 0.5)),
	})
	asOf := day(2022, 10, 1)

	top := calc.VsTier(1, asOf, TierTop)
	require.True(t, top.PPM.Ok())
	assert.Equal(t, 2, top.Matches)
	assert.InDelta(t, 1.5, top.GPM.V, 1e-9)
	assert.InDelta(t, 2.0, top.PPM.V, 1e-9)

	low := calc.VsTier(1, asOf, TierLow)
	assert.Equal(t, 1, low.Matches)
	assert.InDelta(t, 4.0, low.GPM.V, 1e-9)

	mid := calc.VsTier(1, asOf, TierMid)
	assert.Equal(t, StatusAbsent, mid.PPM.Status, "no mid-tier opponents faced")
}

func TestSeasonGoalsRatioFallsBackWhenCleanSheetsOnly(t *testing.T) {
	calc := newSeasonCalc(t, []models.Match{
		mkMatch(day(2022, 9, 1), 1, 2, 3, 0),
		mkMatch(day(2022, 9, 8), 1, 3, 2, 0),
	})

	totals := calc.SeasonGoals(1, day(2022, 10, 1))
	require.True(t, totals.Ratio.Ok())
	assert.InDelta(t, 5.0, totals.Scored.V, 1e-9)
	assert.Zero(t, totals.Conceded.V)
	assert.InDelta(t, 5.0, totals.Ratio.V, 1e-9, "ratio falls back to goals scored")
}

func TestSeasonGoalsRatio(t *testing.T) {
	calc := newSeasonCalc(t, []models.Match{
		mkMatch(day(2022, 9, 1), 1, 2, 3, 2),
		mkMatch(day(2022, 9, 8), 4, 1, 0, 3),
	})

	totals := calc.SeasonGoals(1, day(2022, 10, 1))
	require.True(t, totals.Ratio.Ok())
	assert.InDelta(t, 6.0, totals.Scored.V, 1e-9)
	assert.InDelta(t, 2.0, totals.Conceded.V, 1e-9)
	assert.InDelta(t, 3.0, totals.Ratio.V, 1e-9)
}
