package fbref

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
)

const sourceName = "fbref"

// Fetcher kapselt die Abfrage der Verletzungs- und Ausfalltabelle eines
// Spielers auf FBref. Der Identifikator ist hier der Pfad der Spielerseite
// (z.B. "/en/players/xxxx/Player-Name"), nicht eine numerische ID.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Client *http.Client
}

// NewFetcher erstellt eine neue Instanz des FBref-Fetchers.
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

// FetchInjuries lädt die Spielerseite und liest die "Injuries"-Tabelle aus.
// FBref berichtet englische Verletzungsbezeichnungen und Datumsangaben im
// Format "Jan 2, 2006"; beides bleibt hier Rohtext.
func (f *Fetcher) FetchInjuries(ctx context.Context, query models.SourceQuery) ([]models.RawInjuryRecord, error) {
	if query.SourceID == "" {
		return nil, &sources.PermanentError{Source: sourceName, Err: fmt.Errorf("keine fbref-url für %q konfiguriert", query.PlayerName)}
	}

	url := f.Config.FBrefBaseURL + query.SourceID
	log := f.Logger.With(zap.String("source", sourceName), zap.String("player", query.PlayerName), zap.String("url", url))
	log.Debug("Rufe Spielerseite ab.")

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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &sources.TransientError{Source: sourceName, Err: fmt.Errorf("antwort nicht parsebar: %w", err)}
	}

	table := doc.Find("table#injuries tbody")
	if table.Length() == 0 {
		if doc.Find("body").Length() == 0 {
			return nil, &sources.TransientError{Source: sourceName, Err: fmt.Errorf("leere antwort")}
		}
		// Seite vorhanden, aber keine Injuries-Tabelle: Spieler ohne bekannte Ausfälle.
		return nil, nil
	}

	var records []models.RawInjuryRecord
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rec := models.RawInjuryRecord{
			Source:     sourceName,
			PlayerName: query.PlayerName,
			TeamName:   query.TeamName,
			InjuryText: cell(row, "injury"),
			StartText:  cell(row, "date_start"),
			EndText:    cell(row, "date_end"),
			GamesText:  cell(row, "games_missed"),
			DaysText:   cell(row, "days_missed"),
		}
		if rec.InjuryText == "" && rec.StartText == "" {
			return
		}
		records = append(records, rec)
	})

	log.Debug("Verletzungseinträge gelesen", zap.Int("count", len(records)))
	return records, nil
}

// cell liest eine Zelle über ihr data-stat-Attribut, wie FBref seine
// Tabellen auszeichnet.
func cell(row *goquery.Selection, stat string) string {
	return strings.TrimSpace(row.Find(fmt.Sprintf("[data-stat=%q]", stat)).Text())
}
