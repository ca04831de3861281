package sofascore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
	"github.com/Mehdi030/Verletzungsanalyse/sources"
)

func newTestFetcher(baseURL string) *Fetcher {
	cfg := &config.Config{SofascoreBaseURL: baseURL, FetchTimeout: 5 * time.Second}
	return NewFetcher(cfg, zap.NewNop())
}

func TestFetchInjuriesDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/player/12994/injuries", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"injuries":[
			{"description":"Hamstring injury","startDate":"2024-01-02","endDate":"2024-01-12","gamesMissed":3},
			{"description":"Ankle sprain","startDate":"2024-03-01","endDate":"","gamesMissed":0}
		]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	records, err := f.FetchInjuries(context.Background(), models.SourceQuery{
		PlayerName: "Marco Reus",
		TeamName:   "Borussia Dortmund",
		SourceID:   "12994",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "sofascore", records[0].Source)
	assert.Equal(t, "Hamstring injury", records[0].InjuryText)
	assert.Equal(t, "2024-01-02", records[0].StartText)
	assert.Equal(t, "3", records[0].GamesText)

	assert.Empty(t, records[1].EndText)
	assert.Equal(t, "0", records[1].GamesText)
}

func TestFetchInjuriesEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"injuries":[]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	records, err := f.FetchInjuries(context.Background(), models.SourceQuery{PlayerName: "Marco Reus", SourceID: "12994"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchInjuriesBrokenJSONIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>challenge</html>`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	_, err := f.FetchInjuries(context.Background(), models.SourceQuery{PlayerName: "Marco Reus", SourceID: "12994"})
	require.Error(t, err)

	var te *sources.TransientError
	assert.True(t, errors.As(err, &te), "Block-Antwort statt JSON muss retrybar sein")
}

func TestFetchInjuriesRateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	_, err := f.FetchInjuries(context.Background(), models.SourceQuery{PlayerName: "Marco Reus", SourceID: "12994"})
	require.Error(t, err)

	var te *sources.TransientError
	assert.True(t, errors.As(err, &te))
}

func TestFetchInjuriesRequiresSourceID(t *testing.T) {
	f := newTestFetcher("http://example.invalid")
	_, err := f.FetchInjuries(context.Background(), models.SourceQuery{PlayerName: "Marco Reus"})
	require.Error(t, err)

	var pe *sources.PermanentError
	assert.True(t, errors.As(err, &pe))
}
