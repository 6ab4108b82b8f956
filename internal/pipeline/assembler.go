package pipeline

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/stats"
)

// Default rolling window and output precision.
const (
	DefaultWindow  = 5
	outputDecimals = 3
)

// Assembler walks the focal team's schedule and builds one feature row
// per match, each computed strictly from history before that match's
// date. Values stay at full precision inside the calculators and are
// rounded here, once, on the way into the row.
type Assembler struct {
	repo   *stats.MatchRepository
	form   *stats.FormCalculator
	season *stats.SeasonCalculator
	h2h    *stats.HeadToHeadCalculator
	odds   *stats.OddsCalculator
	logger *logrus.Logger
	teamID int
	window int
}

func NewAssembler(repo *stats.MatchRepository, registry *stats.SeasonRegistry, teamID, window int, logger *logrus.Logger) *Assembler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Assembler{
		repo:   repo,
		form:   stats.NewFormCalculator(repo, logger),
		season: stats.NewSeasonCalculator(repo, registry, logger),
		h2h:    stats.NewHeadToHeadCalculator(repo, logger),
		odds:   stats.NewOddsCalculator(repo),
		logger: logger,
		teamID: teamID,
		window: window,
	}
}

// BuildAll assembles rows for every match of the focal team, ascending
// by date. players maps match id to the lineup for that match and may
// be nil.
func (a *Assembler) BuildAll(runID string, players map[int][]models.PlayerSlot) ([]models.FeatureRow, error) {
	matches := a.repo.ForTeam(a.teamID)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no matches for team %d", a.teamID)
	}

	rows := make([]models.FeatureRow, 0, len(matches))
	for _, m := range matches {
		row := a.BuildRow(m, players[m.ID])
		row.RunID = runID
		rows = append(rows, row)
	}

	a.logger.WithFields(logrus.Fields{
		"component": "assembler",
		"team_id":   a.teamID,
		"rows":      len(rows),
	}).Info("Assembled feature rows")
	return rows, nil
}

// BuildRow computes every feature block for one match of the focal
// team. Absent and Invalid values land as nil pointers; the imputer
// deals with them later and records how.
func (a *Assembler) BuildRow(m models.Match, players []models.PlayerSlot) models.FeatureRow {
	asOf := m.Date
	oppID := m.OpponentOf(a.teamID)

	row := models.FeatureRow{
		MatchID:    m.ID,
		MatchDate:  m.Date,
		Round:      m.Round,
		TeamID:     a.teamID,
		OpponentID: oppID,
		Home:       m.HomeTeamID == a.teamID,
		Players:    players,
		Flags:      models.ImputationFlags{},
	}
	if row.Home {
		row.Team, row.Opponent = m.HomeTeam, m.AwayTeam
	} else {
		row.Team, row.Opponent = m.AwayTeam, m.HomeTeam
	}
	if res, ok := models.ResultFor(m, a.teamID); ok {
		row.GoalsFor = intPtr(res.GoalsFor)
		row.GoalsAgainst = intPtr(res.GoalsAgainst)
		row.Points = intPtr(res.Points)
	}

	a.fillForm(&row, asOf, oppID)
	a.fillSeason(&row, asOf, oppID)
	a.fillOdds(&row, m, asOf, oppID)
	a.fillHeadToHead(&row, asOf, oppID)
	return row
}

func (a *Assembler) fillForm(row *models.FeatureRow, asOf time.Time, oppID int) {
	rm := a.form.LastN(a.teamID, asOf, a.window)
	row.GoalsScoredL5 = rounded(rm.GoalsScoredAvg)
	row.GoalsConcededL5 = rounded(rm.GoalsConcededAvg)
	row.GoalDiffL5 = rounded(rm.GoalDiffAvg)
	row.PPML5 = rounded(rm.PPM)
	row.OppPPML5 = rounded(rm.OppPPMAvg)

	op := a.form.LastN(oppID, asOf, a.window)
	row.OpGoalsScoredL5 = rounded(op.GoalsScoredAvg)
	row.OpGoalsConcededL5 = rounded(op.GoalsConcededAvg)
	row.OpGoalDiffL5 = rounded(op.GoalDiffAvg)
	row.OpPPML5 = rounded(op.PPM)
	row.OpOppPPML5 = rounded(op.OppPPMAvg)
}

func (a *Assembler) fillSeason(row *models.FeatureRow, asOf time.Time, oppID int) {
	seasonPPM, firstSeason := a.season.SeasonPPM(a.teamID, asOf)
	row.SeasonPPM = rounded(seasonPPM)
	row.FirstSeason = firstSeason
	if firstSeason {
		row.Flags["rm_ppm_sea"] = models.FlagFirstSeason
	}

	opSeasonPPM, opFirst := a.season.SeasonPPM(oppID, asOf)
	row.OpSeasonPPM = rounded(opSeasonPPM)
	if opFirst {
		row.Flags["op_ppm_sea"] = models.FlagFirstSeason
	}

	rmTop := a.season.VsTier(a.teamID, asOf, stats.TierTop)
	row.GPMVsTop, row.PPMVsTop = rounded(rmTop.GPM), rounded(rmTop.PPM)
	rmMid := a.season.VsTier(a.teamID, asOf, stats.TierMid)
	row.GPMVsMid, row.PPMVsMid = rounded(rmMid.GPM), rounded(rmMid.PPM)
	rmLow := a.season.VsTier(a.teamID, asOf, stats.TierLow)
	row.GPMVsLow, row.PPMVsLow = rounded(rmLow.GPM), rounded(rmLow.PPM)

	opTop := a.season.VsTier(oppID, asOf, stats.TierTop)
	row.OpGPMVsTop, row.OpPPMVsTop = rounded(opTop.GPM), rounded(opTop.PPM)
	opMid := a.season.VsTier(oppID, asOf, stats.TierMid)
	row.OpGPMVsMid, row.OpPPMVsMid = rounded(opMid.GPM), rounded(opMid.PPM)
	opLow := a.season.VsTier(oppID, asOf, stats.TierLow)
	row.OpGPMVsLow, row.OpPPMVsLow = rounded(opLow.GPM), rounded(opLow.PPM)

	goals := a.season.SeasonGoals(oppID, asOf)
	row.OpGoalsScoredAll = rounded(goals.Scored)
	row.OpGoalsConcededAll = rounded(goals.Conceded)
	row.OpGoalsRatio = rounded(goals.Ratio)
}

func (a *Assembler) fillOdds(row *models.FeatureRow, m models.Match, asOf time.Time, oppID int) {
	row.RMOddsWin = a.odds.WinOdds(m, a.teamID).Ptr()
	row.OpOddsWinL5 = rounded(a.odds.AvgWinOddsLastN(oppID, asOf, a.window))
	row.OpOddsLosL5 = rounded(a.odds.AvgLossOddsLastN(oppID, asOf, a.window))
}

func (a *Assembler) fillHeadToHead(row *models.FeatureRow, asOf time.Time, oppID int) {
	row.H2HExists = a.h2h.HasPriorMeeting(a.teamID, oppID, asOf)

	sum := a.h2h.LastN(a.teamID, oppID, asOf, a.window)
	row.H2HWinRatioL5 = rounded(sum.WinRatio)
	row.H2HGoalBalanceL5 = rounded(sum.GoalBalance)
	row.H2HPPML5 = rounded(sum.PPM)
	row.H2HPPM = rounded(a.h2h.OverallPPM(a.teamID, oppID, asOf))
}

func rounded(v stats.Value) *float64 {
	return v.Round(outputDecimals).Ptr()
}

func intPtr(v int) *int {
	return &v
}
