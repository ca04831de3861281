package services

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
)

// Aggregator macht aus kanonischen Ereignissen die flache Export-Tabelle und
// die Team/Saison-Zusammenfassung. Analyse und Darstellung passieren
// stromabwärts, nicht hier.
type Aggregator struct {
	Logger              *zap.Logger
	SeasonBoundaryMonth time.Month
}

// NewAggregator erstellt einen Aggregator mit der konfigurierten
// Saisongrenze.
func NewAggregator(cfg *config.Config, logger *zap.Logger) *Aggregator {
	month := time.Month(cfg.SeasonBoundaryMonth)
	if month < time.January || month > time.December {
		month = time.July
	}
	return &Aggregator{Logger: logger, SeasonBoundaryMonth: month}
}

// SeasonLabel ordnet ein Datum seiner Saison zu. Mit Grenze Juli gehört der
// 2023-08-01 zur Saison "2023/24", der 2024-02-01 ebenfalls.
func (a *Aggregator) SeasonLabel(t time.Time) string {
	year := t.Year()
	if t.Month() < a.SeasonBoundaryMonth {
		year--
	}
	return fmt.Sprintf("%d/%02d", year, (year+1)%100)
}

// Rows flacht die Ereignisse zu Export-Zeilen ab, eine Zeile pro Ereignis.
func (a *Aggregator) Rows(runID string, events []models.CanonicalInjuryEvent) []models.InjuryEventRow {
	rows := make([]models.InjuryEventRow, 0, len(events))
	for _, e := range events {
		days := e.Interval.Days()
		row := models.InjuryEventRow{
			RunID:         runID,
			Player:        e.PlayerKey,
			Team:          e.TeamKey,
			Season:        a.SeasonLabel(e.Interval.Start),
			Category:      string(e.Category),
			StartDate:     e.Interval.Start,
			EndDate:       e.Interval.End,
			Ongoing:       e.Interval.End == nil,
			DaysMissed:    days,
			GamesMissed:   e.GamesMissed,
			Severity:      severity(days, e.Interval.End == nil),
			Sources:       e.ProvenanceKey(),
			Confidence:    e.Confidence,
			LowConfidence: e.LowConfidence,
		}
		rows = append(rows, row)
	}
	return rows
}

// Summaries aggregiert die Zeilen nach Team und Saison: Anzahl Ereignisse,
// Ausfalltage und verpasste Spiele.
func (a *Aggregator) Summaries(runID string, rows []models.InjuryEventRow) []models.TeamSeasonSummary {
	type bucket struct{ team, season string }
	byBucket := make(map[bucket]*models.TeamSeasonSummary)

	for _, row := range rows {
		b := bucket{team: row.Team, season: row.Season}
		sum, ok := byBucket[b]
		if !ok {
			sum = &models.TeamSeasonSummary{RunID: runID, Team: row.Team, Season: row.Season}
			byBucket[b] = sum
		}
		sum.EventCount++
		sum.DaysMissed += row.DaysMissed
		sum.GamesMissed += row.GamesMissed
	}

	out := make([]models.TeamSeasonSummary, 0, len(byBucket))
	for _, sum := range byBucket {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].Season < out[j].Season
	})

	a.Logger.Debug("Zusammenfassung erstellt", zap.Int("buckets", len(out)))
	return out
}

// severity leitet den Status aus den Ausfalltagen ab, wie ihn auch die
// Team-Übersichten der Quellen anzeigen.
func severity(days int, ongoing bool) string {
	switch {
	case ongoing && days == 0:
		return "Verletzt"
	case days <= 7:
		return "Leicht verletzt"
	case days > 30:
		return "Schwer verletzt"
	default:
		return "Verletzt"
	}
}
