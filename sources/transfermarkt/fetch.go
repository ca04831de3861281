package transfermarkt

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

const sourceName = "transfermarkt"

// Fetcher kapselt die Logik zur Abfrage der Verletzungshistorie eines
// Spielers auf Transfermarkt.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Client *http.Client
}

// NewFetcher erstellt eine neue Instanz des Transfermarkt-Fetchers.
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

// FetchInjuries lädt die Verletzungstabelle der Spieler-Detailseite und gibt
// die rohen Einträge zurück. Datums- und Zahlenfelder bleiben unverändert
// Rohtext; die Normalisierung passiert erst in der Pipeline.
func (f *Fetcher) FetchInjuries(ctx context.Context, query models.SourceQuery) ([]models.RawInjuryRecord, error) {
	if query.SourceID == "" {
		return nil, &sources.PermanentError{Source: sourceName, Err: fmt.Errorf("keine transfermarkt-id für %q konfiguriert", query.PlayerName)}
	}

	url := fmt.Sprintf("%s/%s/verletzungen/spieler/%s",
		f.Config.TransfermarktBaseURL, urlSlug(query.PlayerName), query.SourceID)
	log := f.Logger.With(zap.String("source", sourceName), zap.String("player", query.PlayerName), zap.String("url", url))
	log.Debug("Rufe Verletzungshistorie ab.")

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

	table := doc.Find("table.items tbody")
	if table.Length() == 0 {
		// Ohne Tabelle ist die Seite vermutlich eine Block-Seite, kein leerer Verlauf.
		return nil, &sources.TransientError{Source: sourceName, Err: fmt.Errorf("keine verletzungstabelle gefunden")}
	}

	var records []models.RawInjuryRecord
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		rec := models.RawInjuryRecord{
			Source:     sourceName,
			PlayerName: query.PlayerName,
			TeamName:   query.TeamName,
			InjuryText: text(cells.Eq(1)),
			StartText:  text(cells.Eq(2)),
			EndText:    text(cells.Eq(3)),
			DaysText:   text(cells.Eq(4)),
		}
		if cells.Length() > 5 {
			rec.GamesText = text(cells.Eq(5))
		}
		records = append(records, rec)
	})

	log.Debug("Verletzungseinträge gelesen", zap.Int("count", len(records)))
	return records, nil
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// urlSlug baut den Namensteil der Transfermarkt-URL: Kleinbuchstaben,
// Umlaute ausgeschrieben, Leerzeichen als Bindestriche.
func urlSlug(name string) string {
	s := strings.ToLower(name)
	replacer := strings.NewReplacer(
		"ä", "ae",
		"ö", "oe",
		"ü", "ue",
		"ß", "ss",
		" ", "-",
	)
	return replacer.Replace(s)
}
