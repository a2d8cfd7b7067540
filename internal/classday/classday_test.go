package classday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyWeek(t *testing.T) {
	// 2024-03-03 is a Sunday; walk one full week from it.
	start := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	want := []Day{Sunday, None, None, Wednesday, None, None, None}
	for i, expected := range want {
		got := Classify(start.AddDate(0, 0, i))
		assert.Equal(t, expected, got, "day offset %d", i)
	}
}

func TestClassifyStable(t *testing.T) {
	// Total and deterministic over an arbitrary stretch of dates.
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i)
		first := Classify(d)
		assert.Equal(t, first, Classify(d))
		if first.IsClassDay() {
			assert.True(t, d.Weekday() == time.Sunday || d.Weekday() == time.Wednesday)
		}
	}
}

func TestClassifyDate(t *testing.T) {
	day, ok := ClassifyDate("2024-03-06")
	require.True(t, ok)
	assert.Equal(t, Wednesday, day)

	day, ok = ClassifyDate("2024-03-05")
	require.True(t, ok)
	assert.Equal(t, None, day)
	assert.False(t, day.IsClassDay())

	_, ok = ClassifyDate("03/05/2024")
	assert.False(t, ok)
}
