package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/config"
	"github.com/Mehdi030/Verletzungsanalyse/models"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(&config.Config{SeasonBoundaryMonth: 7}, zap.NewNop())
}

func TestSeasonLabel(t *testing.T) {
	a := newTestAggregator()

	cases := []struct {
		date time.Time
		want string
	}{
		{day(2023, time.August, 1), "2023/24"},
		{day(2024, time.February, 1), "2023/24"},
		{day(2024, time.June, 30), "2023/24"},
		{day(2024, time.July, 1), "2024/25"},
		{day(2019, time.December, 24), "2019/20"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, a.SeasonLabel(tc.date), "date %s", tc.date)
	}
}

func TestRowsFlattenEvents(t *testing.T) {
	a := newTestAggregator()

	end := day(2024, time.January, 12)
	events := []models.CanonicalInjuryEvent{
		{
			PlayerKey:   "mueller",
			TeamKey:     "fc bayern muenchen",
			Category:    models.CategoryMuscular,
			Interval:    models.Interval{Start: day(2024, time.January, 1), End: &end},
			GamesMissed: 3,
			Sources:     []string{"fbref", "transfermarkt"},
			Confidence:  2,
		},
		{
			PlayerKey:  "reus",
			TeamKey:    "borussia dortmund",
			Category:   models.CategoryKnee,
			Interval:   models.Interval{Start: day(2024, time.February, 1)},
			Sources:    []string{"sofascore"},
			Confidence: 1,
		},
	}

	rows := a.Rows("r1", events)
	require.Len(t, rows, 2)

	assert.Equal(t, "2023/24", rows[0].Season)
	assert.Equal(t, 12, rows[0].DaysMissed)
	assert.Equal(t, "fbref,transfermarkt", rows[0].Sources)
	assert.False(t, rows[0].Ongoing)
	assert.Equal(t, "Verletzt", rows[0].Severity)

	assert.True(t, rows[1].Ongoing)
	assert.Nil(t, rows[1].EndDate)
	assert.Equal(t, 0, rows[1].DaysMissed)
	assert.Equal(t, "Verletzt", rows[1].Severity)
}

func TestSeverityBuckets(t *testing.T) {
	assert.Equal(t, "Leicht verletzt", severity(5, false))
	assert.Equal(t, "Verletzt", severity(20, false))
	assert.Equal(t, "Schwer verletzt", severity(45, false))
	assert.Equal(t, "Verletzt", severity(0, true))
}

func TestSummariesGroupByTeamAndSeason(t *testing.T) {
	a := newTestAggregator()

	rows := []models.InjuryEventRow{
		{Team: "fc bayern muenchen", Season: "2023/24", DaysMissed: 10, GamesMissed: 3},
		{Team: "fc bayern muenchen", Season: "2023/24", DaysMissed: 5, GamesMissed: 1},
		{Team: "fc bayern muenchen", Season: "2024/25", DaysMissed: 7, GamesMissed: 2},
		{Team: "borussia dortmund", Season: "2023/24", DaysMissed: 30, GamesMissed: 8},
	}

	summaries := a.Summaries("r1", rows)
	require.Len(t, summaries, 3)

	// Sortiert nach Team, dann Saison.
	assert.Equal(t, "borussia dortmund", summaries[0].Team)
	assert.Equal(t, 30, summaries[0].DaysMissed)

	assert.Equal(t, "fc bayern muenchen", summaries[1].Team)
	assert.Equal(t, "2023/24", summaries[1].Season)
	assert.Equal(t, 2, summaries[1].EventCount)
	assert.Equal(t, 15, summaries[1].DaysMissed)
	assert.Equal(t, 4, summaries[1].GamesMissed)

	assert.Equal(t, "2024/25", summaries[2].Season)
	assert.Equal(t, 1, summaries[2].EventCount)
}
