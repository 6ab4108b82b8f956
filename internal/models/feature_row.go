package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Imputation sources. Every cell that was not computed directly from
// history carries one of these in the row's flag set.
const (
	FlagFirstSeason    = "first_season"
	FlagNoPriorMeeting = "no_prior_meeting"
	FlagSeasonFallback = "season_fallback"
	FlagLowTierMedian  = "low_tier_median"
	FlagColumnMedian   = "column_median"
)

// ImputationFlags records which columns of a row were filled by which
// fallback. Keys are column names, values one of the Flag constants.
// Stored as jsonb.
type ImputationFlags map[string]string

func (f ImputationFlags) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	return json.Marshal(f)
}

func (f *ImputationFlags) Scan(value interface{}) error {
	if value == nil {
		*f = ImputationFlags{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into ImputationFlags", value)
		}
	}
	return json.Unmarshal(bytes, f)
}

// PlayerSlots is the focal team's lineup for the row's match, stored as
// a jsonb array rather than sixteen column blocks.
type PlayerSlots []PlayerSlot

func (p PlayerSlots) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

func (p *PlayerSlots) Scan(value interface{}) error {
	if value == nil {
		*p = PlayerSlots{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into PlayerSlots", value)
		}
	}
	return json.Unmarshal(bytes, p)
}

// FeatureRow is one match of the focal club with every engineered
// feature attached. Feature columns are pointers: nil means the value
// could not be computed from history and (before imputation) must not
// be read as zero.
type FeatureRow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     string    `gorm:"uniqueIndex:idx_run_match;size:36" json:"run_id"`
	MatchID   int       `gorm:"uniqueIndex:idx_run_match" json:"match_id"`
	MatchDate time.Time `gorm:"index" json:"match_date"`
	Round     int       `json:"round"`

	TeamID       int    `json:"team_id"`
	Team         string `json:"team"`
	OpponentID   int    `json:"opponent_id"`
	Opponent     string `json:"opponent"`
	Home         bool   `json:"home"`
	GoalsFor     *int   `json:"goals_for"`
	GoalsAgainst *int   `json:"goals_against"`
	Points       *int   `json:"points"`

	// Focal-team rolling form over the last N matches.
	GoalsScoredL5   *float64 `gorm:"column:rm_g_sco_l5" json:"rm_g_sco_l5"`
	GoalsConcededL5 *float64 `gorm:"column:rm_g_con_l5" json:"rm_g_con_l5"`
	GoalDiffL5      *float64 `gorm:"column:rm_gdif_l5" json:"rm_gdif_l5"`
	PPML5           *float64 `gorm:"column:rm_ppm_l5" json:"rm_ppm_l5"`
	OppPPML5        *float64 `gorm:"column:rm_opp_ppm_l5" json:"rm_opp_ppm_l5"`
	SeasonPPM       *float64 `gorm:"column:rm_ppm_sea" json:"rm_ppm_sea"`

	// Focal-team record against opponent tiers since the previous
	// season start.
	GPMVsTop *float64 `gorm:"column:rm_gpm_vs_top" json:"rm_gpm_vs_top"`
	PPMVsTop *float64 `gorm:"column:rm_ppm_vs_top" json:"rm_ppm_vs_top"`
	GPMVsMid *float64 `gorm:"column:rm_gpm_vs_mid" json:"rm_gpm_vs_mid"`
	PPMVsMid *float64 `gorm:"column:rm_ppm_vs_mid" json:"rm_ppm_vs_mid"`
	GPMVsLow *float64 `gorm:"column:rm_gpm_vs_low" json:"rm_gpm_vs_low"`
	PPMVsLow *float64 `gorm:"column:rm_ppm_vs_low" json:"rm_ppm_vs_low"`

	// Opponent mirror block.
	OpGoalsScoredL5   *float64 `gorm:"column:op_g_sco_l5" json:"op_g_sco_l5"`
	OpGoalsConcededL5 *float64 `gorm:"column:op_g_con_l5" json:"op_g_con_l5"`
	OpGoalDiffL5      *float64 `gorm:"column:op_gdif_l5" json:"op_gdif_l5"`
	OpPPML5           *float64 `gorm:"column:op_ppm_l5" json:"op_ppm_l5"`
	OpOppPPML5        *float64 `gorm:"column:op_opp_ppm_l5" json:"op_opp_ppm_l5"`
	OpSeasonPPM       *float64 `gorm:"column:op_ppm_sea" json:"op_ppm_sea"`
	OpGPMVsTop        *float64 `gorm:"column:op_gpm_vs_top" json:"op_gpm_vs_top"`
	OpPPMVsTop        *float64 `gorm:"column:op_ppm_vs_top" json:"op_ppm_vs_top"`
	OpGPMVsMid        *float64 `gorm:"column:op_gpm_vs_mid" json:"op_gpm_vs_mid"`
	OpPPMVsMid        *float64 `gorm:"column:op_ppm_vs_mid" json:"op_ppm_vs_mid"`
	OpGPMVsLow        *float64 `gorm:"column:op_gpm_vs_low" json:"op_gpm_vs_low"`
	OpPPMVsLow        *float64 `gorm:"column:op_ppm_vs_low" json:"op_ppm_vs_low"`

	// Opponent season goal totals since the previous season start.
	OpGoalsScoredAll   *float64 `gorm:"column:op_g_sco_all" json:"op_g_sco_all"`
	OpGoalsConcededAll *float64 `gorm:"column:op_g_con_all" json:"op_g_con_all"`
	OpGoalsRatio       *float64 `gorm:"column:op_g_ratio" json:"op_g_ratio"`

	// Odds features. RMOddsWin is known before kickoff, so it is not
	// look-ahead even though it belongs to the row's own match.
	RMOddsWin   *float64 `gorm:"column:rm_odd_w" json:"rm_odd_w"`
	OpOddsWinL5 *float64 `gorm:"column:op_odd_w_l5" json:"op_odd_w_l5"`
	OpOddsLosL5 *float64 `gorm:"column:op_odd_l_l5" json:"op_odd_l_l5"`

	// Head-to-head, both sides pooled, focal perspective.
	H2HWinRatioL5    *float64 `gorm:"column:h2h_rm_w_l5" json:"h2h_rm_w_l5"`
	H2HGoalBalanceL5 *float64 `gorm:"column:h2h_rm_gdif_l5" json:"h2h_rm_gdif_l5"`
	H2HPPML5         *float64 `gorm:"column:h2h_ppm_l5" json:"h2h_ppm_l5"`
	H2HPPM           *float64 `gorm:"column:h2h_ppm" json:"h2h_ppm"`
	H2HExists        bool     `gorm:"column:h2h_exists" json:"h2h_exists"`

	// True when SeasonPPM was zero-filled because the focal team has no
	// season history before this row's season.
	FirstSeason bool `gorm:"column:first_season" json:"first_season"`

	Players PlayerSlots     `gorm:"type:jsonb" json:"players"`
	Flags   ImputationFlags `gorm:"type:jsonb" json:"imputation_flags"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FeatureRow) TableName() string {
	return "feature_rows"
}
