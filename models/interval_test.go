package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func closed(start, end time.Time) Interval {
	return Interval{Start: start, End: &end}
}

func TestIntervalOverlaps(t *testing.T) {
	a := closed(d(2024, time.January, 1), d(2024, time.January, 10))

	assert.True(t, a.Overlaps(closed(d(2024, time.January, 5), d(2024, time.January, 20)), 0))
	assert.False(t, a.Overlaps(closed(d(2024, time.February, 1), d(2024, time.February, 5)), 0))

	// Lücke von 5 Tagen: erst mit Toleranz überlappend.
	b := closed(d(2024, time.January, 15), d(2024, time.January, 20))
	assert.False(t, a.Overlaps(b, 0))
	assert.True(t, a.Overlaps(b, 7))

	// Offenes Ende zählt als unbegrenzt nach rechts.
	open := Interval{Start: d(2024, time.January, 5)}
	assert.True(t, open.Overlaps(closed(d(2024, time.March, 1), d(2024, time.March, 10)), 0))
	assert.False(t, open.Overlaps(closed(d(2023, time.December, 1), d(2023, time.December, 10)), 0))
}

func TestIntervalUnion(t *testing.T) {
	a := closed(d(2024, time.January, 1), d(2024, time.January, 10))
	b := closed(d(2024, time.January, 5), d(2024, time.January, 20))

	u := a.Union(b)
	assert.Equal(t, d(2024, time.January, 1), u.Start)
	require.NotNil(t, u.End)
	assert.Equal(t, d(2024, time.January, 20), *u.End)

	// Die offene Seite bleibt offen.
	open := Interval{Start: d(2024, time.January, 5)}
	u = a.Union(open)
	assert.Equal(t, d(2024, time.January, 1), u.Start)
	assert.Nil(t, u.End)
}

func TestIntervalDays(t *testing.T) {
	assert.Equal(t, 10, closed(d(2024, time.January, 1), d(2024, time.January, 10)).Days())
	assert.Equal(t, 1, closed(d(2024, time.January, 1), d(2024, time.January, 1)).Days())
	assert.Equal(t, 0, Interval{Start: d(2024, time.January, 1)}.Days())
}
