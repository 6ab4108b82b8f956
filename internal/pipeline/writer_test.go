package pipeline

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkowalczyk/matchforge/internal/models"
)

func TestWriteCSV(t *testing.T) {
	row := emptyRow(101)
	row.MatchDate = day(2022, 8, 14)
	row.Round = 1
	row.Team = "Legia"
	row.Opponent = "Lech"
	row.Home = true
	row.GoalsFor = ip(2)
	row.GoalsAgainst = ip(1)
	row.Points = ip(3)
	row.PPML5 = fp(1.667)
	row.H2HExists = true
	row.Players = models.PlayerSlots{
		{Slot: 1, PlayerID: 10, Position: "GK", Rating: 6.9, Minutes: 90},
	}
	row.Flags["rm_g_sco_l5"] = models.FlagColumnMedian

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.FeatureRow{row}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header, record := records[0], records[1]
	require.Equal(t, len(header), len(record))

	byName := map[string]string{}
	for i, name := range header {
		byName[name] = record[i]
	}
	assert.Equal(t, "101", byName["match_id"])
	assert.Equal(t, "2022-08-14", byName["match_date"])
	assert.Equal(t, "1", byName["home"])
	assert.Equal(t, "3", byName["points"])
	assert.Equal(t, "1.667", byName["rm_ppm_l5"])
	assert.Equal(t, "", byName["rm_ppm_sea"], "missing cells stay visibly empty")
	assert.Equal(t, "1", byName["h2h_exists"])
	assert.Equal(t, "1", byName["imputed_cells"])
	assert.Equal(t, "10", byName["p1_id"])
	assert.Equal(t, "GK", byName["p1_pos"])
	assert.Equal(t, "", byName["p2_id"], "unfilled slots are empty")
}

func TestWriteCSVHeaderCoversAllFeatureColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)

	seen := map[string]bool{}
	for _, name := range records[0] {
		seen[name] = true
	}
	for _, name := range FeatureColumnNames() {
		assert.True(t, seen[name], "column %s missing from header", name)
	}
}
