package models

// SourceQuery bündelt die Identifikatoren, mit denen ein Spieler bei einer
// bestimmten Quelle abgefragt wird.
type SourceQuery struct {
	PlayerName string // Anzeigename, wie er in der Kader-Konfiguration steht
	TeamName   string
	SourceID   string // quellen-spezifischer Identifikator (z.B. Transfermarkt-Spieler-ID, FBref-URL)
}

// RawInjuryRecord ist ein roher Verletzungseintrag, genau so wie ihn eine Quelle
// geliefert hat. Wird nach der Normalisierung verworfen.
type RawInjuryRecord struct {
	Source     string `json:"source"`
	PlayerName string `json:"player_name"` // Schreibweise der Quelle
	TeamName   string `json:"team_name"`
	InjuryText string `json:"injury_text"` // Freitext, z.B. "Muskelfaserriss"
	StartText  string `json:"start_text"`  // Datum als Rohtext, Format quellenabhängig
	EndText    string `json:"end_text"`    // leer oder "ongoing"/"unbekannt" bei offenem Ende
	GamesText  string `json:"games_text"`  // z.B. "3 Spiele", optional
	DaysText   string `json:"days_text"`   // z.B. "12 Tage", optional
}
