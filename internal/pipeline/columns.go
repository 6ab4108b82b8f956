package pipeline

import "github.com/pkowalczyk/matchforge/internal/models"

// columnClass drives the imputation order: head-to-head columns
// zero-fill when no prior meeting exists, tier columns fall back to the
// season value, last-5 opponent columns prefer a low-tier median, and
// everything else takes the column median.
type columnClass int

const (
	classGeneral columnClass = iota
	classH2H
	classRMTier
	classOpTier
	classOpLastN
)

// column binds a feature column's output name to its field, so the
// imputer, the validator, and the CSV writer all walk one table instead
// of three hand-maintained lists.
type column struct {
	name  string
	class columnClass
	get   func(*models.FeatureRow) **float64
}

var featureColumns = []column{
	{"rm_g_sco_l5", classGeneral, func(r *models.FeatureRow) **float64 { return &r.GoalsScoredL5 }},
	{"rm_g_con_l5", classGeneral, func(r *models.FeatureRow) **float64 { return &r.GoalsConcededL5 }},
	{"rm_gdif_l5", classGeneral, func(r *models.FeatureRow) **float64 { return &r.GoalDiffL5 }},
	{"rm_ppm_l5", classGeneral, func(r *models.FeatureRow) **float64 { return &r.PPML5 }},
	{"rm_opp_ppm_l5", classGeneral, func(r *models.FeatureRow) **float64 { return &r.OppPPML5 }},
	{"rm_ppm_sea", classGeneral, func(r *models.FeatureRow) **float64 { return &r.SeasonPPM }},
	{"rm_gpm_vs_top", classRMTier, func(r *models.FeatureRow) **float64 { return &r.GPMVsTop }},
	{"rm_ppm_vs_top", classRMTier, func(r *models.FeatureRow) **float64 { return &r.PPMVsTop }},
	{"rm_gpm_vs_mid", classRMTier, func(r *models.FeatureRow) **float64 { return &r.GPMVsMid }},
	{"rm_ppm_vs_mid", classRMTier, func(r *models.FeatureRow) **float64 { return &r.PPMVsMid }},
	{"rm_gpm_vs_low", classRMTier, func(r *models.FeatureRow) **float64 { return &r.GPMVsLow }},
	{"rm_ppm_vs_low", classRMTier, func(r *models.FeatureRow) **float64 { return &r.PPMVsLow }},

	{"op_g_sco_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpGoalsScoredL5 }},
	{"op_g_con_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpGoalsConcededL5 }},
	{"op_gdif_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpGoalDiffL5 }},
	{"op_ppm_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpPPML5 }},
	{"op_opp_ppm_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpOppPPML5 }},
	{"op_ppm_sea", classGeneral, func(r *models.FeatureRow) **float64 { return &r.OpSeasonPPM }},
	{"op_gpm_vs_top", classOpTier, func(r *models.FeatureRow) **float64 { return &r.OpGPMVsTop }},
	{"op_ppm_vs_top", classOpTier, func(r *models.FeatureRow) **float64 { return &r.OpPPMVsTop }},
	{"op_gpm_vs_mid", classOpTier, func(r *models.FeatureRow) **float64 { return &r.OpGPMVsMid }},
	{"op_ppm_vs_mid", classOpTier, func(r *models.FeatureRow) **float64 { return &r.OpPPMVsMid }},
	{"op_gpm_vs_low", classOpTier, func(r *models.FeatureRow) **float64 { return &r.OpGPMVsLow }},
	{"op_ppm_vs_low", classOpTier, func(r *models.FeatureRow) **float64 { return &r.OpPPMVsLow }},
	{"op_g_sco_all", classGeneral, func(r *models.FeatureRow) **float64 { return &r.OpGoalsScoredAll }},
	{"op_g_con_all", classGeneral, func(r *models.FeatureRow) **float64 { return &r.OpGoalsConcededAll }},
	{"op_g_ratio", classGeneral, func(r *models.FeatureRow) **float64 { return &r.OpGoalsRatio }},
	{"op_odd_w_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpOddsWinL5 }},
	{"op_odd_l_l5", classOpLastN, func(r *models.FeatureRow) **float64 { return &r.OpOddsLosL5 }},

	{"rm_odd_w", classGeneral, func(r *models.FeatureRow) **float64 { return &r.RMOddsWin }},

	{"h2h_rm_w_l5", classH2H, func(r *models.FeatureRow) **float64 { return &r.H2HWinRatioL5 }},
	{"h2h_rm_gdif_l5", classH2H, func(r *models.FeatureRow) **float64 { return &r.H2HGoalBalanceL5 }},
	{"h2h_ppm_l5", classH2H, func(r *models.FeatureRow) **float64 { return &r.H2HPPML5 }},
	{"h2h_ppm", classH2H, func(r *models.FeatureRow) **float64 { return &r.H2HPPM }},
}

// FeatureColumnNames returns the output column names in table order.
func FeatureColumnNames() []string {
	names := make([]string, len(featureColumns))
	for i, c := range featureColumns {
		names[i] = c.name
	}
	return names
}

// seasonFallbackFor maps a tier column to the row's season-level PPM of
// the same side.
func seasonFallbackFor(class columnClass, r *models.FeatureRow) *float64 {
	switch class {
	case classRMTier:
		return r.SeasonPPM
	case classOpTier:
		return r.OpSeasonPPM
	default:
		return nil
	}
}
