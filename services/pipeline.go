package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
)

// ambiguityThreshold ist die Jaro-Winkler-Schwelle, unter der zwei
// Schreibweisen desselben Keys als verdächtig gemeldet werden.
const ambiguityThreshold = 0.8

// Pipeline orchestriert den gesamten Abgleich-Lauf: Quellen abrufen,
// normalisieren, zusammenführen, aggregieren. Ein Lauf liefert immer ein
// vollständiges RunResult samt Fehler-Manifest, auch bei Quellenausfällen.
type Pipeline struct {
	Config  *config.Config
	Logger  *zap.Logger
	Fetcher *RetryingFetcher
	Sources []sources.Source
}

// NewPipeline erstellt eine neue Pipeline über den gegebenen Quellen.
func NewPipeline(cfg *config.Config, logger *zap.Logger, srcs []sources.Source) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Logger:  logger,
		Fetcher: NewRetryingFetcher(cfg, logger),
		Sources: srcs,
	}
}

// playerOutcome ist das Zwischenergebnis eines Spielers nach dem
// Join-Barrier: erst wenn alle Quellen des Spielers fertig sind, wird
// abgeglichen und das Ergebnis abgeliefert.
type playerOutcome struct {
	events   []models.CanonicalInjuryEvent
	failures []models.SourceFailure
	complete bool
}

// Run führt den Abgleich für die übergebenen Spieler aus. Spieler werden
// nebenläufig verarbeitet, begrenzt durch FetchWorkers; die Quellen eines
// Spielers werden nacheinander abgefragt, damit der Abgleich erst nach dem
// letzten Abruf beginnt. Bei Abbruch über den Kontext gehen nur die noch
// nicht vollständig verarbeiteten Spieler verloren.
func (p *Pipeline) Run(ctx context.Context, players []models.TrackedPlayer) *models.RunResult {
	started := time.Now()
	runID := started.UTC().Format("20060102T150405")
	log := p.Logger.With(zap.String("run_id", runID))
	log.Info("Starte Abgleich-Lauf", zap.Int("players", len(players)), zap.Int("sources", len(p.Sources)))

	identities := NewIdentityRegistry()
	normalizer := NewRecordNormalizer(p.Logger, identities)
	reconciler := NewReconciler(p.Config, p.Logger)

	workers := p.Config.FetchWorkers
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, workers)
	outcomes := make([]playerOutcome, len(players))

	for i := range players {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		semaphore <- struct{}{}

		go func(idx int, player models.TrackedPlayer) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcome := p.processPlayer(ctx, player, normalizer, reconciler)
			mu.Lock()
			outcomes[idx] = outcome
			mu.Unlock()
		}(i, players[i])
	}
	wg.Wait()

	result := &models.RunResult{RunID: runID, StartedAt: started}
	for _, outcome := range outcomes {
		if !outcome.complete {
			continue
		}
		result.Events = append(result.Events, outcome.events...)
		result.Failures = append(result.Failures, outcome.failures...)
	}

	sortEvents(result.Events)
	sort.Slice(result.Failures, func(i, j int) bool {
		if result.Failures[i].Player != result.Failures[j].Player {
			return result.Failures[i].Player < result.Failures[j].Player
		}
		return result.Failures[i].Source < result.Failures[j].Source
	})

	aggregator := NewAggregator(p.Config, p.Logger)
	result.Rows = aggregator.Rows(runID, result.Events)
	result.Summaries = aggregator.Summaries(runID, result.Rows)
	result.Warnings = identities.Warnings(ambiguityThreshold)
	result.FinishedAt = time.Now()

	log.Info("Abgleich-Lauf abgeschlossen",
		zap.Int("events", len(result.Events)),
		zap.Int("failures", len(result.Failures)),
		zap.Int("identity_warnings", len(result.Warnings)),
		zap.Duration("duration", result.FinishedAt.Sub(started)))
	return result
}

// processPlayer holt alle Quellen eines Spielers, normalisiert die rohen
// Einträge und gleicht sie ab. Kehrt mit complete=false zurück, wenn der Lauf
// mittendrin abgebrochen wurde, damit kein halb verarbeiteter Spieler im
// Export landet.
func (p *Pipeline) processPlayer(ctx context.Context, player models.TrackedPlayer, normalizer *RecordNormalizer, reconciler *Reconciler) playerOutcome {
	log := p.Logger.With(zap.String("player", player.Name))

	var normalized []models.NormalizedInjuryRecord
	var failures []models.SourceFailure

	for _, src := range p.Sources {
		if ctx.Err() != nil {
			return playerOutcome{}
		}

		query, ok := player.QueryFor(src.Name())
		if !ok {
			failures = append(failures, models.SourceFailure{
				Player: player.Name,
				Source: src.Name(),
				Status: models.FetchSkipped,
			})
			continue
		}

		res := p.Fetcher.Fetch(ctx, src, query)
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return playerOutcome{}
			}
			failures = append(failures, models.SourceFailure{
				Player:   player.Name,
				Source:   src.Name(),
				Status:   models.FetchUnavailable,
				Attempts: res.Attempts,
				Reason:   res.Err.Error(),
			})
			continue
		}

		dropped := 0
		for _, raw := range res.Records {
			rec, err := normalizer.Normalize(raw)
			if err != nil {
				// Nur der unlesbare Eintrag fällt weg, der Rest des Spielers bleibt.
				dropped++
				continue
			}
			normalized = append(normalized, rec)
		}

		status := models.FetchOK
		if dropped > 0 {
			status = models.FetchPartial
		}
		failures = append(failures, models.SourceFailure{
			Player:   player.Name,
			Source:   src.Name(),
			Status:   status,
			Attempts: res.Attempts,
			Dropped:  dropped,
		})
	}

	events := reconciler.Reconcile(normalized)
	log.Debug("Spieler abgeglichen", zap.Int("records", len(normalized)), zap.Int("events", len(events)))
	return playerOutcome{events: events, failures: failures, complete: true}
}

func sortEvents(events []models.CanonicalInjuryEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].PlayerKey != events[j].PlayerKey {
			return events[i].PlayerKey < events[j].PlayerKey
		}
		if !events[i].Interval.Start.Equal(events[j].Interval.Start) {
			return events[i].Interval.Start.Before(events[j].Interval.Start)
		}
		return events[i].Category < events[j].Category
	})
}
