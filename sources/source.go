package sources

import (
	"context"

	"github.com/Mehdi030/Verletzungsanalyse/models"
)

// Source ist das Interface, das jede Verletzungsdaten-Quelle (z.B.
// Transfermarkt, FBref, Sofascore) implementieren muss. Die Quelle darf
// Fehler nicht verschlucken: transiente und permanente Fehler werden als
// *TransientError bzw. *PermanentError gemeldet, damit der Fetcher
// entscheiden kann, ob ein Retry sinnvoll ist.
type Source interface {
	// FetchInjuries holt alle rohen Verletzungseinträge für einen Spieler.
	// Eine leere Liste ist ein gültiges Ergebnis (keine Verletzungen bekannt).
	FetchInjuries(ctx context.Context, query models.SourceQuery) ([]models.RawInjuryRecord, error)

	// Name gibt den eindeutigen Namen der Quelle zurück (z.B. "transfermarkt").
	Name() string
}
