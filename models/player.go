package models

// TrackedPlayer ist ein Spieler aus der Kader-Konfiguration, für den
// Verletzungsdaten eingesammelt werden. Die quellen-spezifischen
// Identifikatoren dürfen leer sein, dann wird die Quelle übersprungen.
type TrackedPlayer struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"` // z.B. "Manuel Neuer"
	Team string `json:"team" gorm:"index;not null"`       // z.B. "FC Bayern München"

	TransfermarktID string `json:"transfermarkt_id,omitempty"`
	FBrefURL        string `json:"fbref_url,omitempty"`
	SofascoreID     string `json:"sofascore_id,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (TrackedPlayer) TableName() string {
	return "tracked_players"
}

// QueryFor baut die Quellen-Abfrage für den angegebenen Quellennamen; das
// zweite Ergebnis ist false, wenn der Spieler dort keinen Identifikator hat.
func (p *TrackedPlayer) QueryFor(source string) (SourceQuery, bool) {
	q := SourceQuery{PlayerName: p.Name, TeamName: p.Team}
	switch source {
	case "transfermarkt":
		q.SourceID = p.TransfermarktID
	case "fbref":
		q.SourceID = p.FBrefURL
	case "sofascore":
		q.SourceID = p.SofascoreID
	default:
		return q, false
	}
	return q, q.SourceID != ""
}
