package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// Slots written to the flat file. Rows with fewer recorded players get
// empty cells for the rest.
const playerSlotCount = 16

// WriteCSV flattens rows into the training-ready flat file: base
// columns, every feature column in table order, the imputation flag
// count, and the player slots expanded to per-slot column blocks.
func WriteCSV(w io.Writer, rows []models.FeatureRow) error {
	writer := csv.NewWriter(w)

	header := []string{
		"match_id", "match_date", "round", "team", "opponent", "home",
		"goals_for", "goals_against", "points",
	}
	header = append(header, FeatureColumnNames()...)
	header = append(header, "h2h_exists", "first_season", "imputed_cells")
	for slot := 1; slot <= playerSlotCount; slot++ {
		prefix := fmt.Sprintf("p%d_", slot)
		header = append(header, prefix+"id", prefix+"pos", prefix+"rating", prefix+"min")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range rows {
		if err := writer.Write(csvRecord(&rows[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the flat file to path, replacing any previous
// build.
func WriteCSVFile(path string, rows []models.FeatureRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func csvRecord(r *models.FeatureRow) []string {
	record := []string{
		strconv.Itoa(r.MatchID),
		r.MatchDate.Format("2006-01-02"),
		strconv.Itoa(r.Round),
		r.Team,
		r.Opponent,
		boolCell(r.Home),
		optIntCell(r.GoalsFor),
		optIntCell(r.GoalsAgainst),
		optIntCell(r.Points),
	}
	for _, col := range featureColumns {
		record = append(record, floatCell(*col.get(r)))
	}
	record = append(record, boolCell(r.H2HExists), boolCell(r.FirstSeason), strconv.Itoa(len(r.Flags)))

	for slot := 1; slot <= playerSlotCount; slot++ {
		var found *models.PlayerSlot
		for i := range r.Players {
			if r.Players[i].Slot == slot {
				found = &r.Players[i]
				break
			}
		}
		if found == nil {
			record = append(record, "", "", "", "")
			continue
		}
		record = append(record,
			strconv.Itoa(found.PlayerID),
			found.Position,
			strconv.FormatFloat(found.Rating, 'f', -1, 64),
			strconv.Itoa(found.Minutes),
		)
	}
	return record
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optIntCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolCell(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
