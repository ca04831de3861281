package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
)

func testResult() *models.RunResult {
	end := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	return &models.RunResult{
		RunID:      "20240115T050000",
		StartedAt:  time.Date(2024, time.January, 15, 5, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, time.January, 15, 5, 2, 0, 0, time.UTC),
		Rows: []models.InjuryEventRow{
			{
				RunID:       "20240115T050000",
				Player:      "thomas mueller",
				Team:        "fc bayern muenchen",
				Season:      "2023/24",
				Category:    "Muscular",
				StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
				EndDate:     &end,
				DaysMissed:  12,
				GamesMissed: 3,
				Severity:    "Verletzt",
				Sources:     "fbref,transfermarkt",
				Confidence:  2,
			},
			{
				RunID:     "20240115T050000",
				Player:    "marco reus",
				Team:      "borussia dortmund",
				Season:    "2023/24",
				Category:  "Knee",
				StartDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
				Ongoing:   true,
				Severity:  "Verletzt",
				Sources:   "sofascore",
				Confidence: 1,
			},
		},
		Summaries: []models.TeamSeasonSummary{
			{RunID: "20240115T050000", Team: "borussia dortmund", Season: "2023/24", EventCount: 1},
			{RunID: "20240115T050000", Team: "fc bayern muenchen", Season: "2023/24", EventCount: 1, DaysMissed: 12, GamesMissed: 3},
		},
	}
}

func TestExportWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{ExportDir: dir}
	e := NewExporter(cfg, zap.NewNop(), nil)

	require.NoError(t, e.Export(context.Background(), testResult()))

	// Gesamt-CSV mit deutschen Spaltenköpfen.
	f, err := os.Open(filepath.Join(dir, "verletzungen_gesamt.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Spieler", "Team", "Saison", "Kategorie", "von", "bis", "Ausfalltage", "Verpasste_Spiele", "Status", "Quellen", "Confidence", "Low_Confidence"}, records[0])
	assert.Equal(t, "thomas mueller", records[1][0])
	assert.Equal(t, "2024-01-01", records[1][4])
	assert.Equal(t, "2024-01-12", records[1][5])
	assert.Equal(t, "fbref,transfermarkt", records[1][9])

	// Laufende Verletzung: leeres Ende.
	assert.Equal(t, "marco reus", records[2][0])
	assert.Equal(t, "", records[2][5])
}

func TestExportWritesRunJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{ExportDir: dir}
	e := NewExporter(cfg, zap.NewNop(), nil)

	result := testResult()
	require.NoError(t, e.Export(context.Background(), result))

	data, err := os.ReadFile(filepath.Join(dir, "verletzungen_lauf.json"))
	require.NoError(t, err)

	var decoded models.RunResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.RunID, decoded.RunID)
	assert.Len(t, decoded.Rows, 2)
}

func TestExportWritesTeamSummaryCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{ExportDir: dir}
	e := NewExporter(cfg, zap.NewNop(), nil)

	require.NoError(t, e.Export(context.Background(), testResult()))

	data, err := os.ReadFile(filepath.Join(dir, "verletzungen_teams.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Team,Saison,Verletzungen,Ausfalltage,Verpasste_Spiele", lines[0])
	assert.Contains(t, lines[2], "fc bayern muenchen,2023/24,1,12,3")
}

func TestExportReplacesPreviousArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{ExportDir: dir}
	e := NewExporter(cfg, zap.NewNop(), nil)

	require.NoError(t, e.Export(context.Background(), testResult()))

	second := testResult()
	second.Rows = second.Rows[:1]
	second.Summaries = second.Summaries[1:]
	require.NoError(t, e.Export(context.Background(), second))

	f, err := os.Open(filepath.Join(dir, "verletzungen_gesamt.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2, "Dateien werden pro Lauf ersetzt, nicht fortgeschrieben")

	// Keine Tempdateien zurückgelassen.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), entry.Name())
	}
}
