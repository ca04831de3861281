package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
)

// FetchResult ist das Ergebnis eines (ggf. mehrfach versuchten) Abrufs einer
// Quelle für einen Spieler. Err ist nil bei Erfolg; bei Misserfolg trägt es
// den letzten Fehler, Attempts die Zahl der unternommenen Versuche.
type FetchResult struct {
	Records  []models.RawInjuryRecord
	Attempts int
	Err      error
}

// RetryingFetcher umhüllt beliebige Quellen mit begrenztem Retry,
// exponentiellem Backoff mit Jitter und einem Höflichkeits-Mindestabstand pro
// Quelle. Ein Fehlschlag ist nie fatal für den Gesamtlauf; der Aufrufer
// erhält immer ein FetchResult.
type RetryingFetcher struct {
	Config *config.Config
	Logger *zap.Logger

	// lastSlot merkt sich pro Quelle den zuletzt vergebenen Anfrage-Slot.
	// Einziger über Goroutinen geteilter Zustand des Fetchers.
	mu       sync.Mutex
	lastSlot map[string]time.Time
}

// NewRetryingFetcher erstellt eine neue Instanz des RetryingFetcher.
func NewRetryingFetcher(cfg *config.Config, logger *zap.Logger) *RetryingFetcher {
	return &RetryingFetcher{
		Config:   cfg,
		Logger:   logger,
		lastSlot: make(map[string]time.Time),
	}
}

// Fetch ruft die Quelle für einen Spieler ab. Transiente Fehler werden bis
// MaxFetchAttempts wiederholt, permanente Fehler sofort gemeldet. Alle
// Wartezeiten sind durch den Kontext abbrechbar.
func (f *RetryingFetcher) Fetch(ctx context.Context, src sources.Source, query models.SourceQuery) FetchResult {
	log := f.Logger.With(zap.String("source", src.Name()), zap.String("player", query.PlayerName))

	maxAttempts := f.Config.MaxFetchAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := f.awaitSlot(ctx, src.Name()); err != nil {
			return FetchResult{Attempts: attempt - 1, Err: err}
		}

		records, err := src.FetchInjuries(ctx, query)
		if err == nil {
			log.Debug("Quelle erfolgreich abgerufen", zap.Int("records", len(records)), zap.Int("attempt", attempt))
			return FetchResult{Records: records, Attempts: attempt}
		}
		lastErr = err

		if !sources.IsRetryable(err) {
			log.Warn("Permanenter Quellenfehler, kein Retry", zap.Error(err), zap.Int("attempt", attempt))
			return FetchResult{Attempts: attempt, Err: err}
		}
		if attempt == maxAttempts {
			break
		}

		delay := f.backoff(attempt)
		log.Warn("Transienter Quellenfehler, warte vor erneutem Versuch",
			zap.Error(err), zap.Int("attempt", attempt), zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return FetchResult{Attempts: attempt, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	log.Warn("Quelle nach allen Versuchen nicht verfügbar", zap.Int("attempts", maxAttempts), zap.Error(lastErr))
	return FetchResult{Attempts: maxAttempts, Err: lastErr}
}

// backoff berechnet die Wartezeit vor dem nächsten Versuch: exponentiell ab
// BackoffBase, plus zufälliger Jitter, gedeckelt durch BackoffCap.
func (f *RetryingFetcher) backoff(attempt int) time.Duration {
	base := f.Config.BackoffBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	delay := base << uint(attempt-1)
	delay += time.Duration(rand.Int63n(int64(base) + 1))
	if max := f.Config.BackoffCap; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// awaitSlot reserviert unter dem Mutex den nächsten freien Anfrage-Slot der
// Quelle und wartet ihn ab. Der Mindestabstand gilt unabhängig davon, welche
// Goroutine die Quelle gerade abfragt.
func (f *RetryingFetcher) awaitSlot(ctx context.Context, source string) error {
	delay := f.Config.PolitenessDelay
	if delay <= 0 {
		return nil
	}

	f.mu.Lock()
	now := time.Now()
	slot := now
	if last, ok := f.lastSlot[source]; ok && last.Add(delay).After(now) {
		slot = last.Add(delay)
	}
	f.lastSlot[source] = slot
	f.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
