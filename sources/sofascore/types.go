package sofascore

// injuryResponse bildet die JSON-Antwort des Spieler-Endpunkts ab. Nur die
// hier relevanten Felder sind modelliert.
type injuryResponse struct {
	Injuries []injuryEntry `json:"injuries"`
}

type injuryEntry struct {
	Description string `json:"description"` // z.B. "Hamstring injury"
	StartDate   string `json:"startDate"`   // ISO, z.B. "2024-01-02"
	EndDate     string `json:"endDate"`     // leer, solange der Spieler ausfällt
	GamesMissed int    `json:"gamesMissed"`
}
