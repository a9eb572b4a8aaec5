package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	cases := map[string]Period{
		"":        PeriodAll,
		"all":     PeriodAll,
		"day":     PeriodDay,
		"Today":   PeriodDay,
		"daily":   PeriodDay,
		"week":    PeriodWeek,
		"weekly":  PeriodWeek,
		"month":   PeriodMonth,
		"monthly": PeriodMonth,
	}
	for in, want := range cases {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("year")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPeriodRange_Day(t *testing.T) {
	ref := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	r, err := PeriodDay.Range(ref, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r.Start)
	assert.True(t, r.Contains(time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2024, 3, 15, 23, 59, 59, 999_000_000, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 14, 23, 59, 59, 0, time.UTC)))
}

func TestPeriodRange_WeekStartsMonday(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
	}{
		{"wednesday", time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)},
		{"monday", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := PeriodWeek.Range(tt.ref, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), r.Start)
			assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), r.End)
		})
	}
}

func TestPeriodRange_Month(t *testing.T) {
	r, err := PeriodMonth.Range(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.True(t, r.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodRange_AllIsUnbounded(t *testing.T) {
	r, err := PeriodAll.Range(time.Now(), time.UTC)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.True(t, r.Contains(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodRange_UsesHostelTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	// 03:00 UTC on the 16th is still the 15th in UTC-6
	ref := time.Date(2024, 3, 16, 3, 0, 0, 0, time.UTC)

	r, err := PeriodDay.Range(ref, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), r.Start)
}

func TestPeriodRange_Unknown(t *testing.T) {
	_, err := Period("fortnight").Range(time.Now(), time.UTC)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
