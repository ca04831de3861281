package models

import (
	"sort"
	"strings"
	"time"
)

// CanonicalInjuryEvent ist die abgeglichene, deduplizierte Repräsentation
// einer realen Verletzung über alle Quellen hinweg.
type CanonicalInjuryEvent struct {
	PlayerKey     string         `json:"player_key"`
	TeamKey       string         `json:"team_key"`
	Category      InjuryCategory `json:"category"`
	Interval      Interval       `json:"interval"`
	GamesMissed   int            `json:"games_missed"`
	Sources       []string       `json:"sources"`    // Provenienz, sortiert und eindeutig
	Confidence    int            `json:"confidence"` // Anzahl bestätigender Quellen
	LowConfidence bool           `json:"low_confidence,omitempty"`
}

// AddSource nimmt eine Quelle in die Provenienz auf; Duplikate erhöhen die
// Confidence nicht.
func (e *CanonicalInjuryEvent) AddSource(source string) {
	for _, s := range e.Sources {
		if s == source {
			return
		}
	}
	e.Sources = append(e.Sources, source)
	sort.Strings(e.Sources)
	e.Confidence = len(e.Sources)
}

// ProvenanceKey gibt die Provenienz als stabilen, kommagetrennten String
// zurück (für Export und Vergleiche in Tests).
func (e *CanonicalInjuryEvent) ProvenanceKey() string {
	return strings.Join(e.Sources, ",")
}

// InjuryEventRow ist die flache Export-Zeile eines CanonicalInjuryEvent, wie
// sie in die Datenbank und in CSV/JSON geschrieben wird.
type InjuryEventRow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RunID  string `json:"run_id" gorm:"index;not null"`
	Player string `json:"player" gorm:"index;not null"`
	Team   string `json:"team" gorm:"index;not null"`
	Season string `json:"season" gorm:"index"` // z.B. "2023/24"

	Category  string     `json:"category" gorm:"index"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"` // NULL bei noch laufender Verletzung
	Ongoing   bool       `json:"ongoing"`

	DaysMissed  int    `json:"days_missed"`
	GamesMissed int    `json:"games_missed"`
	Severity    string `json:"severity"` // abgeleitet aus Ausfalltagen

	Sources       string `json:"sources"` // kommagetrennte Provenienz
	Confidence    int    `json:"confidence"`
	LowConfidence bool   `json:"low_confidence"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (InjuryEventRow) TableName() string {
	return "injury_events"
}
