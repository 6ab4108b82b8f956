package pipeline

import (
	"time"

	"github.com/pkowalczyk/matchforge/internal/models"
)

// Report summarizes a built dataset: shape, completeness, and how much
// of it is imputed rather than computed. It is stored with the pipeline
// run and served by the API.
type Report struct {
	RunID           string         `json:"run_id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Rows            int            `json:"rows"`
	FeatureColumns  int            `json:"feature_columns"`
	MissingCells    int            `json:"missing_cells"`
	MissingPct      float64        `json:"missing_pct"`
	ImputedCells    int            `json:"imputed_cells"`
	ImputedPct      float64        `json:"imputed_pct"`
	DateFrom        time.Time      `json:"date_from"`
	DateTo          time.Time      `json:"date_to"`
	FirstSeasonRows int            `json:"first_season_rows"`
	NoH2HRows       int            `json:"no_h2h_rows"`
	MissingByColumn map[string]int `json:"missing_by_column,omitempty"`
	ImputedBySource map[string]int `json:"imputed_by_source,omitempty"`
}

// Validate inspects rows after assembly and imputation. A non-empty
// MissingByColumn on a post-imputation dataset means the imputer has a
// bug; the builder refuses to ship such a run.
func Validate(runID string, rows []models.FeatureRow) Report {
	report := Report{
		RunID:           runID,
		GeneratedAt:     time.Now().UTC(),
		Rows:            len(rows),
		FeatureColumns:  len(featureColumns),
		MissingByColumn: map[string]int{},
		ImputedBySource: map[string]int{},
	}
	if len(rows) == 0 {
		return report
	}

	report.DateFrom = rows[0].MatchDate
	report.DateTo = rows[0].MatchDate
	for i := range rows {
		r := &rows[i]
		if r.MatchDate.Before(report.DateFrom) {
			report.DateFrom = r.MatchDate
		}
		if r.MatchDate.After(report.DateTo) {
			report.DateTo = r.MatchDate
		}
		if r.FirstSeason {
			report.FirstSeasonRows++
		}
		if !r.H2HExists {
			report.NoH2HRows++
		}
		for _, col := range featureColumns {
			if *col.get(r) == nil {
				report.MissingCells++
				report.MissingByColumn[col.name]++
			}
		}
		report.ImputedCells += len(r.Flags)
		for _, source := range r.Flags {
			report.ImputedBySource[source]++
		}
	}

	total := float64(len(rows) * len(featureColumns))
	report.MissingPct = 100 * float64(report.MissingCells) / total
	report.ImputedPct = 100 * float64(report.ImputedCells) / total

	if len(report.MissingByColumn) == 0 {
		report.MissingByColumn = nil
	}
	if len(report.ImputedBySource) == 0 {
		report.ImputedBySource = nil
	}
	return report
}

// Complete reports whether the dataset has no missing feature cells.
func (r Report) Complete() bool {
	return r.MissingCells == 0
}
