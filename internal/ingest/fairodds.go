package ingest

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// BackfillFairOdds strips the bookmaker margin from the 1X2 prices of
// every match that has all three. Implied probabilities (1/odds) are
// normalized by their sum, the overround, and inverted back to odds, so
// the fair probabilities of a match sum to exactly one. Matches with a
// missing or degenerate price keep zero fair odds and are reported via
// the returned count.
//
// The input slice is not modified.
func BackfillFairOdds(matches []models.Match, logger *logrus.Logger) ([]models.Match, int) {
	out := make([]models.Match, len(matches))
	copy(out, matches)

	skipped := 0
	for i := range out {
		m := &out[i]
		if m.HomeOdds <= 1.0 || m.DrawOdds <= 1.0 || m.AwayOdds <= 1.0 {
			skipped++
			continue
		}
		overround := 1/m.HomeOdds + 1/m.DrawOdds + 1/m.AwayOdds
		m.HomeOddsFair = round2(m.HomeOdds * overround)
		m.DrawOddsFair = round2(m.DrawOdds * overround)
		m.AwayOddsFair = round2(m.AwayOdds * overround)
	}

	if skipped > 0 {
		logger.WithFields(logrus.Fields{
			"component": "fair_odds",
			"skipped":   skipped,
			"total":     len(out),
		}).Warn("Matches without a full 1X2 price kept zero fair odds")
	}
	return out, skipped
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
