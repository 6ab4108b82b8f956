package models

import "time"

// Match is one fixture from the merged season files. Goals are nil for
// matches that were not played (or whose result never made it into the
// source file); every calculator treats those rows as "no information",
// never as 0-0.
type Match struct {
	ID         int       `json:"match_id"`
	Date       time.Time `json:"match_date"`
	Round      int       `json:"round"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	HomeGoals  *int      `json:"home_goals"`
	AwayGoals  *int      `json:"away_goals"`

	// Raw bookmaker odds as listed in the source file, 0 when missing.
	HomeOdds float64 `json:"home_odds"`
	DrawOdds float64 `json:"draw_odds"`
	AwayOdds float64 `json:"away_odds"`

	// De-margined odds, backfilled by ingest.BackfillFairOdds.
	HomeOddsFair float64 `json:"home_odds_fair"`
	DrawOddsFair float64 `json:"draw_odds_fair"`
	AwayOddsFair float64 `json:"away_odds_fair"`

	// Points-per-match of each side as of kickoff, backfilled by
	// ingest.BackfillPPM. 0 for a team's first match of the season.
	PPMHome float64 `json:"ppm_home"`
	PPMAway float64 `json:"ppm_away"`
}

// Played reports whether the match has a recorded final score.
func (m *Match) Played() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Involves reports whether teamID played in this match, home or away.
func (m *Match) Involves(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// OpponentOf returns the other side's team id, or 0 when teamID did not
// play in this match.
func (m *Match) OpponentOf(teamID int) int {
	switch teamID {
	case m.HomeTeamID:
		return m.AwayTeamID
	case m.AwayTeamID:
		return m.HomeTeamID
	default:
		return 0
	}
}

// OpponentPPM returns the pre-kickoff points-per-match of the side that
// is NOT teamID. This is the "strength of schedule" input for the form
// and tier calculators.
func (m *Match) OpponentPPM(teamID int) (float64, bool) {
	switch teamID {
	case m.HomeTeamID:
		return m.PPMAway, true
	case m.AwayTeamID:
		return m.PPMHome, true
	default:
		return 0, false
	}
}

// FairWinOdds returns the de-margined odds on teamID winning this match,
// or false when teamID did not play or odds were never backfilled.
func (m *Match) FairWinOdds(teamID int) (float64, bool) {
	var odds float64
	switch teamID {
	case m.HomeTeamID:
		odds = m.HomeOddsFair
	case m.AwayTeamID:
		odds = m.AwayOddsFair
	default:
		return 0, false
	}
	if odds <= 1.0 {
		return 0, false
	}
	return odds, true
}

// FairLossOdds returns the de-margined odds on teamID losing this match
// (the other side winning).
func (m *Match) FairLossOdds(teamID int) (float64, bool) {
	switch teamID {
	case m.HomeTeamID:
		return m.FairWinOdds(m.AwayTeamID)
	case m.AwayTeamID:
		return m.FairWinOdds(m.HomeTeamID)
	default:
		return 0, false
	}
}

// Points awarded per result, the standard league scheme.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// TeamResult is a Match seen from one side's perspective. It is a view,
// derived on demand and never stored.
type TeamResult struct {
	GoalsFor     int
	GoalsAgainst int
	Points       int
	OpponentPPM  float64
}

// ResultFor derives the result of m from teamID's perspective. Returns
// false when the match is unplayed or teamID did not take part. The
// result comes from comparing goals only; there is no separate
// precomputed result column to drift from.
func ResultFor(m Match, teamID int) (TeamResult, bool) {
	if !m.Played() || !m.Involves(teamID) {
		return TeamResult{}, false
	}

	var r TeamResult
	if m.HomeTeamID == teamID {
		r.GoalsFor = *m.HomeGoals
		r.GoalsAgainst = *m.AwayGoals
		r.OpponentPPM = m.PPMAway
	} else {
		r.GoalsFor = *m.AwayGoals
		r.GoalsAgainst = *m.HomeGoals
		r.OpponentPPM = m.PPMHome
	}

	switch {
	case r.GoalsFor > r.GoalsAgainst:
		r.Points = WinPoints
	case r.GoalsFor == r.GoalsAgainst:
		r.Points = DrawPoints
	}
	return r, true
}
