package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
)

const dateLayout = "2006-01-02"

// Exporter schreibt das Ergebnis eines Laufs als CSV und JSON in das
// Export-Verzeichnis und lädt die Artefakte optional ins S3. Die Dateien
// werden pro Lauf komplett ersetzt, nie zeilenweise fortgeschrieben.
type Exporter struct {
	Config   *config.Config
	Logger   *zap.Logger
	S3Client *s3.Client // nil, wenn S3 deaktiviert ist
}

// NewExporter erstellt einen Exporter; s3Client darf nil sein.
func NewExporter(cfg *config.Config, logger *zap.Logger, s3Client *s3.Client) *Exporter {
	return &Exporter{Config: cfg, Logger: logger, S3Client: s3Client}
}

// Export persistiert Zeilen, Zusammenfassung und Fehler-Manifest eines Laufs.
func (e *Exporter) Export(ctx context.Context, result *models.RunResult) error {
	if err := os.MkdirAll(e.Config.ExportDir, 0o755); err != nil {
		return fmt.Errorf("export-verzeichnis anlegen: %w", err)
	}

	csvData, err := rowsCSV(result.Rows)
	if err != nil {
		return fmt.Errorf("csv erzeugen: %w", err)
	}
	if err := e.writeArtifact(ctx, "verletzungen_gesamt.csv", csvData); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("json erzeugen: %w", err)
	}
	if err := e.writeArtifact(ctx, "verletzungen_lauf.json", jsonData); err != nil {
		return err
	}

	summaryData, err := summariesCSV(result.Summaries)
	if err != nil {
		return fmt.Errorf("summary-csv erzeugen: %w", err)
	}
	if err := e.writeArtifact(ctx, "verletzungen_teams.csv", summaryData); err != nil {
		return err
	}

	e.Logger.Info("Export abgeschlossen",
		zap.String("run_id", result.RunID),
		zap.String("dir", e.Config.ExportDir),
		zap.Int("rows", len(result.Rows)))
	return nil
}

// writeArtifact schreibt eine Datei atomar (Tempdatei + Rename) und lädt sie
// bei aktiviertem S3 zusätzlich hoch.
func (e *Exporter) writeArtifact(ctx context.Context, name string, data []byte) error {
	path := filepath.Join(e.Config.ExportDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artefakt %s schreiben: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("artefakt %s ersetzen: %w", name, err)
	}

	if e.Config.S3Enabled && e.S3Client != nil {
		key := fmt.Sprintf("exports/%s/%s", time.Now().UTC().Format("2006-01-02"), name)
		link, err := UploadArtifact(ctx, e.S3Client, e.Config, key, data)
		if err != nil {
			// Upload-Fehler verhindern nicht den lokalen Export.
			e.Logger.Warn("S3-Upload fehlgeschlagen", zap.String("key", key), zap.Error(err))
		} else {
			e.Logger.Info("Artefakt nach S3 hochgeladen", zap.String("link", link))
		}
	}
	return nil
}

func rowsCSV(rows []models.InjuryEventRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Spieler", "Team", "Saison", "Kategorie", "von", "bis", "Ausfalltage", "Verpasste_Spiele", "Status", "Quellen", "Confidence", "Low_Confidence"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		end := ""
		if row.EndDate != nil {
			end = row.EndDate.Format(dateLayout)
		}
		record := []string{
			row.Player,
			row.Team,
			row.Season,
			row.Category,
			row.StartDate.Format(dateLayout),
			end,
			strconv.Itoa(row.DaysMissed),
			strconv.Itoa(row.GamesMissed),
			row.Severity,
			row.Sources,
			strconv.Itoa(row.Confidence),
			strconv.FormatBool(row.LowConfidence),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func summariesCSV(summaries []models.TeamSeasonSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Team", "Saison", "Verletzungen", "Ausfalltage", "Verpasste_Spiele"}); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		record := []string{
			s.Team,
			s.Season,
			strconv.Itoa(s.EventCount),
			strconv.Itoa(s.DaysMissed),
			strconv.Itoa(s.GamesMissed),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
