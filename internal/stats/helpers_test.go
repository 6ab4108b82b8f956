package stats

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
)

func testLogger() *logrus.Logger {
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

type matchOpt func(*models.Match)

func withPPM(home, away float64) matchOpt {
	return func(m *models.Match) {
		m.PPMHome = home
		m.PPMAway = away
	}
}

func withFairOdds(home, draw, away float64) matchOpt {
	return func(m *models.Match) {
		m.HomeOddsFair = home
		m.DrawOddsFair = draw
		m.AwayOddsFair = away
	}
}

func unplayed() matchOpt {
	return func(m *models.Match) {
		m.HomeGoals = nil
		m.AwayGoals = nil
	}
}

var matchSeq int

func mkMatch(date time.Time, homeID, awayID, homeGoals, awayGoals int, opts ...matchOpt) models.Match {
	matchSeq++
	m := models.Match{
		ID:         matchSeq,
		Date:       date,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		HomeGoals:  intPtr(homeGoals),
		AwayGoals:  intPtr(awayGoals),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}
