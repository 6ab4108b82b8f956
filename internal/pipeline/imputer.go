package pipeline

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/stats"
)

// Imputer fills the gaps the assembler left behind. The fill order is
// tiered, most specific first:
//
//  1. head-to-head columns zero-fill on rows with no prior meeting,
//     because "never met" genuinely means no wins, no points, no goals;
//  2. tier columns fall back to the same side's season PPM;
//  3. opponent last-5 columns, empty for newly promoted sides, take the
//     median over rows whose opponent sits in the LOW tier;
//  4. whatever is still empty takes the column median.
//
// Every filled cell is flagged with its source, so a downstream model
// can weight or drop imputed rows. After Run no feature cell is nil.
type Imputer struct {
	logger *logrus.Logger
}

func NewImputer(logger *logrus.Logger) *Imputer {
	return &Imputer{logger: logger}
}

// Run imputes rows in place and returns the number of cells filled.
func (im *Imputer) Run(rows []models.FeatureRow) int {
	for i := range rows {
		if rows[i].Flags == nil {
			rows[i].Flags = models.ImputationFlags{}
		}
	}

	filled := 0
	filled += im.fillH2H(rows)
	filled += im.fillTiers(rows)
	filled += im.fillOpLastN(rows)
	filled += im.fillMedians(rows)

	im.logger.WithFields(logrus.Fields{
		"component": "imputer",
		"rows":      len(rows),
		"filled":    filled,
	}).Info("Imputation complete")
	return filled
}

func (im *Imputer) fillH2H(rows []models.FeatureRow) int {
	filled := 0
	for i := range rows {
		r := &rows[i]
		if r.H2HExists {
			continue
		}
		for _, col := range featureColumns {
			if col.class != classH2H {
				continue
			}
			if cell := col.get(r); *cell == nil {
				*cell = zeroPtr()
				r.Flags[col.name] = models.FlagNoPriorMeeting
				filled++
			}
		}
	}
	return filled
}

func (im *Imputer) fillTiers(rows []models.FeatureRow) int {
	filled := 0
	for i := range rows {
		r := &rows[i]
		for _, col := range featureColumns {
			if col.class != classRMTier && col.class != classOpTier {
				continue
			}
			cell := col.get(r)
			if *cell != nil {
				continue
			}
			if season := seasonFallbackFor(col.class, r); season != nil {
				v := *season
				*cell = &v
				r.Flags[col.name] = models.FlagSeasonFallback
				filled++
			}
		}
	}
	return filled
}

// fillOpLastN handles opponents with no league history, typically
// promoted teams: their rolling columns take the median of the same
// column over rows whose opponent is LOW tier. When no low-tier rows
// exist the gap is left for the final median pass.
func (im *Imputer) fillOpLastN(rows []models.FeatureRow) int {
	filled := 0
	for _, col := range featureColumns {
		if col.class != classOpLastN {
			continue
		}

		var lowValues []float64
		for i := range rows {
			r := &rows[i]
			if r.OpSeasonPPM == nil || stats.TierFor(*r.OpSeasonPPM) != stats.TierLow {
				continue
			}
			if cell := col.get(r); *cell != nil {
				lowValues = append(lowValues, **cell)
			}
		}
		med, ok := median(lowValues)
		if !ok {
			continue
		}

		for i := range rows {
			r := &rows[i]
			if cell := col.get(r); *cell == nil {
				v := med
				*cell = &v
				r.Flags[col.name] = models.FlagLowTierMedian
				filled++
			}
		}
	}
	return filled
}

func (im *Imputer) fillMedians(rows []models.FeatureRow) int {
	filled := 0
	for _, col := range featureColumns {
		var values []float64
		for i := range rows {
			if cell := col.get(&rows[i]); *cell != nil {
				values = append(values, **cell)
			}
		}
		med, ok := median(values)
		if !ok {
			// A column with no computed value anywhere zero-fills;
			// there is nothing to estimate from.
			med = 0
		}

		for i := range rows {
			r := &rows[i]
			if cell := col.get(r); *cell == nil {
				v := med
				*cell = &v
				r.Flags[col.name] = models.FlagColumnMedian
				filled++
			}
		}
	}
	return filled
}

func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

func zeroPtr() *float64 {
	v := 0.0
	return &v
}
