package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandBatchSpecTilesWindow(t *testing.T) {
	// 2025-06-02 is a Monday.
	spec := BatchSpec{
		StartDate:    date(2025, time.June, 2),
		EndDate:      date(2025, time.June, 2),
		Weekdays:     []time.Weekday{time.Monday},
		DailyStart:   9 * time.Hour,
		DailyEnd:     11 * time.Hour,
		SlotDuration: 30 * time.Minute,
	}

	candidates, err := ExpandBatchSpec(spec)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	expected := []SlotRange{
		{Start: date(2025, time.June, 2).Add(9 * time.Hour), End: date(2025, time.June, 2).Add(9*time.Hour + 30*time.Minute)},
		{Start: date(2025, time.June, 2).Add(9*time.Hour + 30*time.Minute), End: date(2025, time.June, 2).Add(10 * time.Hour)},
		{Start: date(2025, time.June, 2).Add(10 * time.Hour), End: date(2025, time.June, 2).Add(10*time.Hour + 30*time.Minute)},
		{Start: date(2025, time.June, 2).Add(10*time.Hour + 30*time.Minute), End: date(2025, time.June, 2).Add(11 * time.Hour)},
	}
	assert.Equal(t, expected, candidates)
}

func TestExpandBatchSpecDropsShortRemainder(t *testing.T) {
	spec := BatchSpec{
		StartDate:    date(2025, time.June, 2),
		EndDate:      date(2025, time.June, 2),
		Weekdays:     []time.Weekday{time.Monday},
		DailyStart:   9 * time.Hour,
		DailyEnd:     10*time.Hour + 45*time.Minute,
		SlotDuration: 30 * time.Minute,
	}

	candidates, err := ExpandBatchSpec(spec)
	require.NoError(t, err)

	// 10:30-10:45 is shorter than the slot duration and must not be emitted.
	require.Len(t, candidates, 3)
	last := candidates[len(candidates)-1]
	assert.Equal(t, date(2025, time.June, 2).Add(10*time.Hour+30*time.Minute), last.End)
}

func TestExpandBatchSpecSkipsDaysOutsideMask(t *testing.T) {
	// 2025-06-02 Monday through 2025-06-08 Sunday.
	spec := BatchSpec{
		StartDate:    date(2025, time.June, 2),
		EndDate:      date(2025, time.June, 8),
		Weekdays:     []time.Weekday{time.Tuesday, time.Thursday},
		DailyStart:   9 * time.Hour,
		DailyEnd:     10 * time.Hour,
		SlotDuration: 30 * time.Minute,
	}

	candidates, err := ExpandBatchSpec(spec)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	for _, c := range candidates {
		wd := c.Start.Weekday()
		assert.Contains(t, []time.Weekday{time.Tuesday, time.Thursday}, wd)
	}
}

func TestExpandBatchSpecCandidatesNeverOverlap(t *testing.T) {
	spec := BatchSpec{
		StartDate:    date(2025, time.June, 2),
		EndDate:      date(2025, time.June, 30),
		Weekdays:     []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		DailyStart:   8 * time.Hour,
		DailyEnd:     18 * time.Hour,
		SlotDuration: 45 * time.Minute,
	}

	candidates, err := ExpandBatchSpec(spec)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	for i, c := range candidates {
		assert.Equal(t, spec.SlotDuration, c.End.Sub(c.Start))
		if i > 0 {
			prev := candidates[i-1]
			assert.False(t, prev.Start.Before(c.End) && c.Start.Before(prev.End),
				"candidates %d and %d overlap", i-1, i)
			assert.True(t, c.Start.After(prev.Start), "candidates must be ordered")
		}
	}
}

func TestExpandBatchSpecValidation(t *testing.T) {
	valid := BatchSpec{
		StartDate:    date(2025, time.June, 2),
		EndDate:      date(2025, time.June, 3),
		Weekdays:     []time.Weekday{time.Monday},
		DailyStart:   9 * time.Hour,
		DailyEnd:     17 * time.Hour,
		SlotDuration: 30 * time.Minute,
	}

	cases := []struct {
		name    string
		mutate  func(*BatchSpec)
		wantErr error
	}{
		{"end date before start date", func(s *BatchSpec) { s.EndDate = date(2025, time.June, 1) }, ErrInvalidDateRange},
		{"daily end before daily start", func(s *BatchSpec) { s.DailyEnd = 8 * time.Hour }, ErrInvalidDailyWindow},
		{"zero duration", func(s *BatchSpec) { s.SlotDuration = 0 }, ErrInvalidDuration},
		{"no weekdays", func(s *BatchSpec) { s.Weekdays = nil }, ErrNoWeekdays},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := valid
			tc.mutate(&spec)
			_, err := ExpandBatchSpec(spec)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
