package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// Loader reads the normalized CSV source files. Columns are resolved by
// header name, not position, so reordered exports keep working.
type Loader struct {
	logger *logrus.Logger
}

func NewLoader(logger *logrus.Logger) *Loader {
	return &Loader{logger: logger}
}

const dateLayout = "2006-01-02"

// LoadMatches reads a merged match file. Rows with unparseable ids or
// dates fail the load; empty goal cells become nil, never zero.
func (l *Loader) LoadMatches(path string) ([]models.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matches file: %w", err)
	}
	defer f.Close()

	matches, err := l.ReadMatches(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	l.logger.WithFields(logrus.Fields{
		"component": "loader",
		"path":      path,
		"matches":   len(matches),
	}).Info("Loaded match file")
	return matches, nil
}

// ReadMatches parses match rows from r.
func (l *Loader) ReadMatches(r io.Reader) ([]models.Match, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, []string{
		"match_id", "match_date", "round",
		"home_team_id", "away_team_id", "home_team", "away_team",
		"home_goals", "away_goals",
	})
	if err != nil {
		return nil, err
	}
	// Odds columns are optional; some historical files predate them.
	oddsCols, _ := indexColumns(header, []string{"home_odds", "draw_odds", "away_odds"})

	var matches []models.Match
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		m, err := parseMatch(record, cols, oddsCols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func parseMatch(record []string, cols, oddsCols map[string]int) (models.Match, error) {
	var m models.Match
	var err error

	if m.ID, err = intField(record, cols, "match_id"); err != nil {
		return m, err
	}
	if m.Date, err = time.Parse(dateLayout, field(record, cols, "match_date")); err != nil {
		return m, fmt.Errorf("match_date: %w", err)
	}
	if m.Round, err = intField(record, cols, "round"); err != nil {
		return m, err
	}
	if m.HomeTeamID, err = intField(record, cols, "home_team_id"); err != nil {
		return m, err
	}
	if m.AwayTeamID, err = intField(record, cols, "away_team_id"); err != nil {
		return m, err
	}
	m.HomeTeam = field(record, cols, "home_team")
	m.AwayTeam = field(record, cols, "away_team")

	if m.HomeGoals, err = optionalIntField(record, cols, "home_goals"); err != nil {
		return m, err
	}
	if m.AwayGoals, err = optionalIntField(record, cols, "away_goals"); err != nil {
		return m, err
	}
	// A half-recorded score is a data error, not a missing result.
	if (m.HomeGoals == nil) != (m.AwayGoals == nil) {
		return m, fmt.Errorf("match %d: one goal cell filled, the other empty", m.ID)
	}

	if oddsCols != nil {
		if m.HomeOdds, err = optionalFloatField(record, oddsCols, "home_odds"); err != nil {
			return m, err
		}
		if m.DrawOdds, err = optionalFloatField(record, oddsCols, "draw_odds"); err != nil {
			return m, err
		}
		if m.AwayOdds, err = optionalFloatField(record, oddsCols, "away_odds"); err != nil {
			return m, err
		}
	}
	return m, nil
}

// LoadAppearances reads the focal team's player appearance file keyed
// by match id.
func (l *Loader) LoadAppearances(path string) (map[int][]models.PlayerSlot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open appearances file: %w", err)
	}
	defer f.Close()

	slots, err := l.ReadAppearances(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	l.logger.WithFields(logrus.Fields{
		"component": "loader",
		"path":      path,
		"matches":   len(slots),
	}).Info("Loaded appearance file")
	return slots, nil
}

// ReadAppearances parses appearance rows from r, grouped by match and
// ordered by slot number within each match.
func (l *Loader) ReadAppearances(r io.Reader) (map[int][]models.PlayerSlot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, []string{
		"match_id", "slot", "player_id", "name", "position", "rating", "minutes",
	})
	if err != nil {
		return nil, err
	}

	out := make(map[int][]models.PlayerSlot)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		matchID, err := intField(record, cols, "match_id")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		slot := models.PlayerSlot{
			Name:     field(record, cols, "name"),
			Position: field(record, cols, "position"),
		}
		if slot.Slot, err = intField(record, cols, "slot"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if slot.PlayerID, err = intField(record, cols, "player_id"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if slot.Rating, err = floatField(record, cols, "rating"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if slot.Minutes, err = intField(record, cols, "minutes"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out[matchID] = append(out[matchID], slot)
	}

	for _, slots := range out {
		sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	}
	return out, nil
}

func indexColumns(header, names []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	out := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		out[name] = i
	}
	return out, nil
}

func field(record []string, cols map[string]int, name string) string {
	i := cols[name]
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func intField(record []string, cols map[string]int, name string) (int, error) {
	v, err := strconv.Atoi(field(record, cols, name))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func floatField(record []string, cols map[string]int, name string) (float64, error) {
	v, err := strconv.ParseFloat(field(record, cols, name), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func optionalIntField(record []string, cols map[string]int, name string) (*int, error) {
	s := field(record, cols, name)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &v, nil
}

func optionalFloatField(record []string, cols map[string]int, name string) (float64, error) {
	s := field(record, cols, name)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
