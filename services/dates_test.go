package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	jan1 := day(2024, time.January, 1)
	require.Equal(t, 0, daysBetween(jan1, jan1.Add(23*time.Hour)))
	require.Equal(t, 1, daysBetween(jan1, day(2024, time.January, 2)))
	require.Equal(t, 2, daysBetween(jan1, day(2024, time.January, 3)))
	require.Equal(t, -1, daysBetween(jan1, day(2023, time.December, 31)))
	// Leap day counts like any other day.
	require.Equal(t, 1, daysBetween(day(2024, time.February, 28), day(2024, time.February, 29)))
}

func TestMonthBounds(t *testing.T) {
	from, to := MonthBounds(time.Date(2024, time.February, 14, 18, 30, 0, 0, time.UTC))
	require.Equal(t, day(2024, time.February, 1), from)
	require.Equal(t, day(2024, time.March, 1), to)

	// December rolls over the year boundary.
	from, to = MonthBounds(day(2023, time.December, 31))
	require.Equal(t, day(2023, time.December, 1), from)
	require.Equal(t, day(2024, time.January, 1), to)
}

func TestCombineDateTime(t *testing.T) {
	got, err := combineDateTime(day(2024, time.May, 1), "18:30", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.May, 1, 18, 30, 0, 0, time.UTC), got)

	_, err = combineDateTime(day(2024, time.May, 1), "25:00", time.UTC)
	require.Error(t, err)
}
