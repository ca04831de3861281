package models

import "time"

// Interval ist ein kalendarischer Verletzungszeitraum. Ein nil-Ende bedeutet
// "noch verletzt" (offenes Intervall) und wird bewusst nicht auf "heute"
// gesetzt.
type Interval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Overlaps meldet, ob sich zwei Intervalle überschneiden oder höchstens
// toleranceDays auseinander liegen. Offene Intervalle zählen als unbegrenzt
// nach rechts.
func (iv Interval) Overlaps(other Interval, toleranceDays int) bool {
	tol := time.Duration(toleranceDays) * 24 * time.Hour
	// iv liegt komplett vor other?
	if iv.End != nil && iv.End.Add(tol).Before(other.Start) {
		return false
	}
	// other liegt komplett vor iv?
	if other.End != nil && other.End.Add(tol).Before(iv.Start) {
		return false
	}
	return true
}

// Union erweitert das Intervall auf die Vereinigung beider Spannen. Sobald
// eine Seite offen ist, bleibt das Ergebnis offen.
func (iv Interval) Union(other Interval) Interval {
	out := iv
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if out.End == nil || other.End == nil {
		out.End = nil
		return out
	}
	if other.End.After(*out.End) {
		e := *other.End
		out.End = &e
	}
	return out
}

// Days gibt die Ausfalltage zurück (inklusive Start- und Endtag); 0 bei
// offenem Ende.
func (iv Interval) Days() int {
	if iv.End == nil {
		return 0
	}
	return int(iv.End.Sub(iv.Start).Hours()/24) + 1
}

// NormalizedInjuryRecord ist ein Verletzungseintrag nach Datums- und
// Taxonomie-Normalisierung. Spieler und Team sind bereits kanonische Keys.
type NormalizedInjuryRecord struct {
	PlayerKey   string         `json:"player_key"`
	TeamKey     string         `json:"team_key"`
	Category    InjuryCategory `json:"category"`
	Interval    Interval       `json:"interval"`
	GamesMissed int            `json:"games_missed"`
	DaysMissed  int            `json:"days_missed"`
	Source      string         `json:"source"`
}
