package fbref

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
)

const playerPage = `<html><body>
<table id="injuries"><tbody>
<tr>
  <td data-stat="date_start">Jan 2, 2024</td>
  <td data-stat="date_end">Jan 12, 2024</td>
  <td data-stat="injury">Hamstring strain</td>
  <td data-stat="days_missed">10</td>
  <td data-stat="games_missed">3</td>
</tr>
<tr>
  <td data-stat="date_start"></td>
  <td data-stat="date_end"></td>
  <td data-stat="injury"></td>
</tr>
</tbody></table>
</body></html>`

func newTestFetcher(baseURL string) *Fetcher {
	cfg := &config.Config{FBrefBaseURL: baseURL, FetchTimeout: 5 * time.Second}
	return NewFetcher(cfg, zap.NewNop())
}

func TestFetchInjuriesReadsDataStatCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/en/players/6ce1f46f/Thomas-Muller", r.URL.Path)
		w.Write([]byte(playerPage))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	records, err := f.FetchInjuries(context.Background(), models.SourceQuery{
		PlayerName: "Thomas Müller",
		TeamName:   "FC Bayern München",
		SourceID:   "/en/players/6ce1f46f/Thomas-Muller",
	})
	require.NoError(t, err)
	// Die leere Zeile fällt weg.
	require.Len(t, records, 1)

	assert.Equal(t, "fbref", records[0].Source)
	assert.Equal(t, "Hamstring strain", records[0].InjuryText)
	assert.Equal(t, "Jan 2, 2024", records[0].StartText)
	assert.Equal(t, "Jan 12, 2024", records[0].EndText)
	assert.Equal(t, "10", records[0].DaysText)
	assert.Equal(t, "3", records[0].GamesText)
}

func TestFetchInjuriesPageWithoutTableMeansNoInjuries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Thomas Müller</h1></body></html>`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	records, err := f.FetchInjuries(context.Background(), models.SourceQuery{
		PlayerName: "Thomas Müller",
		SourceID:   "/en/players/6ce1f46f/Thomas-Muller",
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}
