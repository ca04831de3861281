package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
)

const sourceName = "sofascore"

// Fetcher kapselt die Abfrage der Sofascore-API. Anders als die beiden
// Scraping-Quellen liefert Sofascore JSON, die Struktur ist aber genauso
// quellen-spezifisch und wird sofort in RawInjuryRecord überführt.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Client *http.Client
}

// NewFetcher erstellt eine neue Instanz des Sofascore-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		Client: sources.NewHTTPClient(cfg.FetchTimeout),
	}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return sourceName
}

// FetchInjuries ruft den Verletzungs-Endpunkt für eine Spieler-ID ab.
func (f *Fetcher) FetchInjuries(ctx context.Context, query models.SourceQuery) ([]models.RawInjuryRecord, error) {
	if query.SourceID == "" {
		return nil, &sources.PermanentError{Source: sourceName, Err: fmt.Errorf("keine sofascore-id für %q konfiguriert", query.PlayerName)}
	}

	url := fmt.Sprintf("%s/player/%s/injuries", f.Config.SofascoreBaseURL, query.SourceID)
	log := f.Logger.With(zap.String("source", sourceName), zap.String("player", query.PlayerName), zap.String("url", url))
	log.Debug("Rufe Verletzungs-Endpunkt ab.")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &sources.PermanentError{Source: sourceName, Err: err}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &sources.TransientError{Source: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.ClassifyStatus(sourceName, resp.StatusCode)
	}

	var body injuryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// Kaputtes JSON ist bei dieser API erfahrungsgemäß eine Block-Antwort.
		return nil, &sources.TransientError{Source: sourceName, Err: fmt.Errorf("antwort nicht parsebar: %w", err)}
	}

	records := make([]models.RawInjuryRecord, 0, len(body.Injuries))
	for _, entry := range body.Injuries {
		records = append(records, models.RawInjuryRecord{
			Source:     sourceName,
			PlayerName: query.PlayerName,
			TeamName:   query.TeamName,
			InjuryText: entry.Description,
			StartText:  entry.StartDate,
			EndText:    entry.EndDate,
			GamesText:  strconv.Itoa(entry.GamesMissed),
		})
	}

	log.Debug("Verletzungseinträge gelesen", zap.Int("count", len(records)))
	return records, nil
}
