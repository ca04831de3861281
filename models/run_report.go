package models

import "time"

// FetchStatus beschreibt das Ergebnis eines Quellen-Abrufs für einen Spieler.
type FetchStatus string

const (
	FetchOK          FetchStatus = "ok"
	FetchPartial     FetchStatus = "partial"     // Daten erhalten, aber einzelne Einträge verworfen
	FetchUnavailable FetchStatus = "unavailable" // Quelle lieferte nichts (erschöpfte Retries oder permanenter Fehler)
	FetchSkipped     FetchStatus = "skipped"     // Spieler hat keinen Identifikator für diese Quelle
)

// SourceFailure ist ein Eintrag im Fehler-Manifest: eine Quelle, ein Spieler,
// ein Ergebnis.
type SourceFailure struct {
	Player   string      `json:"player"`
	Source   string      `json:"source"`
	Status   FetchStatus `json:"status"`
	Attempts int         `json:"attempts,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Dropped  int         `json:"dropped_records,omitempty"` // Anzahl unparsebare Einträge
}

// IdentityWarning meldet zwei deutlich verschiedene Schreibweisen, die auf
// denselben kanonischen Key normalisieren. Wird nur gemeldet, nie automatisch
// aufgelöst.
type IdentityWarning struct {
	Key        string   `json:"key"`
	Variants   []string `json:"variants"`
	Similarity float64  `json:"similarity"` // niedrigste paarweise Ähnlichkeit
}

// TeamSeasonSummary ist die pro Team und Saison aggregierte Auswertung der
// kanonischen Verletzungsereignisse.
type TeamSeasonSummary struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RunID       string `json:"run_id" gorm:"index;not null"`
	Team        string `json:"team" gorm:"index;not null"`
	Season      string `json:"season" gorm:"index;not null"`
	EventCount  int    `json:"event_count"`
	DaysMissed  int    `json:"days_missed"`
	GamesMissed int    `json:"games_missed"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (TeamSeasonSummary) TableName() string {
	return "team_season_summaries"
}

// RunResult bündelt das vollständige Ergebnis eines Pipeline-Laufs: Ereignisse,
// Export-Zeilen, Zusammenfassungen und das Fehler-Manifest. Ein Lauf liefert
// immer ein Ergebnis, auch wenn einzelne Quellen ausgefallen sind.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Events    []CanonicalInjuryEvent `json:"events"`
	Rows      []InjuryEventRow       `json:"rows"`
	Summaries []TeamSeasonSummary    `json:"summaries"`
	Failures  []SourceFailure        `json:"failures"`
	Warnings  []IdentityWarning      `json:"identity_warnings,omitempty"`
}
