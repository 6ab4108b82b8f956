package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkowalczyk/matchforge/internal/models"
)

func fp(v float64) *float64 { return &v }

func emptyRow(matchID int) models.FeatureRow {
	return models.FeatureRow{
		MatchID: matchID,
		Flags:   models.ImputationFlags{},
	}
}

func TestImputerZeroFillsH2HWithoutPriorMeeting(t *testing.T) {
	rows := []models.FeatureRow{emptyRow(1)}
	rows[0].H2HExists = false

	NewImputer(testLogger()).Run(rows)

	require.NotNil(t, rows[0].H2HWinRatioL5)
	assert.Zero(t, *rows[0].H2HWinRatioL5)
	assert.Equal(t, models.FlagNoPriorMeeting, rows[0].Flags["h2h_rm_w_l5"])
	assert.Equal(t, models.FlagNoPriorMeeting, rows[0].Flags["h2h_ppm"])
}

func TestImputerLeavesComputedH2HAlone(t *testing.T) {
	rows := []models.FeatureRow{emptyRow(1), emptyRow(2)}
	rows[0].H2HExists = true
	rows[0].H2HWinRatioL5 = fp(0.5)
	rows[1].H2HExists = true // meeting exists but window was broken

	NewImputer(testLogger()).Run(rows)

	assert.InDelta(t, 0.5, *rows[0].H2HWinRatioL5, 1e-9)
	assert.NotContains(t, rows[0].Flags, "h2h_rm_w_l5")
	// Row 2 falls through to the median pass, not the zero fill.
	assert.Equal(t, models.FlagColumnMedian, rows[1].Flags["h2h_rm_w_l5"])
	assert.InDelta(t, 0.5, *rows[1].H2HWinRatioL5, 1e-9)
}

func TestImputerTierColumnsFallBackToSeasonPPM(t *testing.T) {
	rows := []models.FeatureRow{emptyRow(1)}
	rows[0].SeasonPPM = fp(1.8)
	rows[0].OpSeasonPPM = fp(0.9)

	NewImputer(testLogger()).Run(rows)

	require.NotNil(t, rows[0].PPMVsTop)
	assert.InDelta(t, 1.8, *rows[0].PPMVsTop, 1e-9)
	assert.Equal(t, models.FlagSeasonFallback, rows[0].Flags["rm_ppm_vs_top"])

	require.NotNil(t, rows[0].OpPPMVsMid)
	assert.InDelta(t, 0.9, *rows[0].OpPPMVsMid, 1e-9)
	assert.Equal(t, models.FlagSeasonFallback, rows[0].Flags["op_ppm_vs_mid"])
}

func TestImputerPromotedOpponentTakesLowTierMedian(t *testing.T) {
	// Two rows against established LOW-tier opponents with known form,
	// one against a promoted side with none.
	rows := []models.FeatureRow{emptyRow(1), emptyRow(2), emptyRow(3)}
	rows[0].OpSeasonPPM = fp(0.8)
	rows[0].OpPPML5 = fp(0.6)
	rows[1].OpSeasonPPM = fp(1.0)
	rows[1].OpPPML5 = fp(1.0)
	rows[2].OpSeasonPPM = fp(2.2) // promoted side imputed upstream as strong
	rows[2].OpPPML5 = nil

	NewImputer(testLogger()).Run(rows)

	require.NotNil(t, rows[2].OpPPML5)
	assert.InDelta(t, 0.8, *rows[2].OpPPML5, 1e-9, "median of the low-tier values")
	assert.Equal(t, models.FlagLowTierMedian, rows[2].Flags["op_ppm_l5"])
}

func TestImputerColumnMedianCatchesTheRest(t *testing.T) {
	rows := []models.FeatureRow{emptyRow(1), emptyRow(2), emptyRow(3)}
	rows[0].PPML5 = fp(1.0)
	rows[1].PPML5 = fp(2.0)

	NewImputer(testLogger()).Run(rows)

	require.NotNil(t, rows[2].PPML5)
	assert.InDelta(t, 1.5, *rows[2].PPML5, 1e-9)
	assert.Equal(t, models.FlagColumnMedian, rows[2].Flags["rm_ppm_l5"])
}

func TestImputerNeverLeavesAGap(t *testing.T) {
	// Worst case: three completely empty rows.
	rows := []models.FeatureRow{emptyRow(1), emptyRow(2), emptyRow(3)}

	filled := NewImputer(testLogger()).Run(rows)
	assert.Positive(t, filled)

	for i := range rows {
		for _, col := range featureColumns {
			cell := col.get(&rows[i])
			require.NotNil(t, *cell, "row %d column %s", i, col.name)
			assert.Contains(t, rows[i].Flags, col.name)
		}
	}
}

func TestMedian(t *testing.T) {
	_, ok := median(nil)
	assert.False(t, ok)

	m, ok := median([]float64{3, 1, 2})
	require.True(t, ok)
	assert.InDelta(t, 2.0, m, 1e-9)

	m, ok = median([]float64{4, 1, 2, 3})
	require.True(t, ok)
	assert.InDelta(t, 2.5, m, 1e-9)
}
