package services

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
)

// Reconciler führt normalisierte Einträge mehrerer Quellen für denselben
// Spieler zu kanonischen Verletzungsereignissen zusammen. Das Ergebnis ist
// deterministisch: gleiche Eingabemenge ergibt unabhängig von der Reihenfolge
// dieselben Ereignisse.
type Reconciler struct {
	Logger        *zap.Logger
	ToleranceDays int
	staleSources  map[string]bool
}

// NewReconciler erstellt einen Reconciler mit dem Toleranzfenster und der
// Liste notorisch veralteter Quellen aus der Konfiguration.
func NewReconciler(cfg *config.Config, logger *zap.Logger) *Reconciler {
	stale := make(map[string]bool)
	for _, s := range cfg.StaleSourceList() {
		stale[s] = true
	}
	return &Reconciler{
		Logger:        logger,
		ToleranceDays: cfg.MergeToleranceDays,
		staleSources:  stale,
	}
}

// Reconcile gruppiert die Einträge nach Spieler und gleicht jede Gruppe
// unabhängig ab. Einträge ohne Spieler-Key werden ignoriert.
func (r *Reconciler) Reconcile(records []models.NormalizedInjuryRecord) []models.CanonicalInjuryEvent {
	groups := make(map[string][]models.NormalizedInjuryRecord)
	for _, rec := range records {
		if rec.PlayerKey == "" {
			continue
		}
		groups[rec.PlayerKey] = append(groups[rec.PlayerKey], rec)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var events []models.CanonicalInjuryEvent
	for _, key := range keys {
		events = append(events, r.reconcilePlayer(groups[key])...)
	}
	return events
}

// reconcilePlayer gleicht die Einträge eines einzelnen Spielers ab.
//
// Die Einträge werden nach (Startdatum, Quelle) sortiert und der Reihe nach
// gegen die bereits erzeugten Ereignisse geprüft. Ein Eintrag verschmilzt mit
// dem ersten Ereignis, dessen Intervall sich (bis auf das Toleranzfenster)
// überschneidet und dessen Kategorie kompatibel ist; sonst entsteht ein neues
// Ereignis. Die Quellen-Tiebreak-Sortierung macht das Ergebnis unabhängig von
// der Eingabereihenfolge bei gleichen Startdaten.
func (r *Reconciler) reconcilePlayer(records []models.NormalizedInjuryRecord) []models.CanonicalInjuryEvent {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Interval.Start.Equal(records[j].Interval.Start) {
			return records[i].Interval.Start.Before(records[j].Interval.Start)
		}
		return records[i].Source < records[j].Source
	})

	var events []models.CanonicalInjuryEvent
	for _, rec := range records {
		merged := false
		for i := range events {
			if !events[i].Interval.Overlaps(rec.Interval, r.ToleranceDays) {
				continue
			}
			if !events[i].Category.Compatible(rec.Category) {
				continue
			}

			events[i].Interval = events[i].Interval.Union(rec.Interval)
			if rec.GamesMissed > events[i].GamesMissed {
				// Max der Quellen: Untertreibung ist bei diesen Quellen häufiger als Übertreibung.
				events[i].GamesMissed = rec.GamesMissed
			}
			if rec.Category.Specificity() > events[i].Category.Specificity() {
				events[i].Category = rec.Category
			}
			events[i].AddSource(rec.Source)
			merged = true
			break
		}
		if merged {
			continue
		}

		event := models.CanonicalInjuryEvent{
			PlayerKey:   rec.PlayerKey,
			TeamKey:     rec.TeamKey,
			Category:    rec.Category,
			Interval:    rec.Interval,
			GamesMissed: rec.GamesMissed,
		}
		event.AddSource(rec.Source)
		events = append(events, event)
	}

	// Ereignisse, die nur eine als veraltet bekannte Quelle stützt, werden
	// markiert, aber nie entfernt; das Ausfiltern entscheidet der Aufrufer.
	for i := range events {
		if events[i].Confidence == 1 && r.staleSources[events[i].Sources[0]] {
			events[i].LowConfidence = true
			r.Logger.Debug("Ereignis nur durch veraltete Quelle gestützt",
				zap.String("player", events[i].PlayerKey), zap.String("source", events[i].Sources[0]))
		}
	}
	return events
}
