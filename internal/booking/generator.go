package booking

import (
	"errors"
	"time"
)

// SlotRange is a candidate (start, end) pair produced by the generator.
type SlotRange struct {
	Start time.Time
	End   time.Time
}

// BatchSpec describes a recurring batch of slots: every day in
// [StartDate, EndDate] whose weekday is in Weekdays gets the daily window
// [DailyStart, DailyEnd) tiled with SlotDuration-sized slots.
// DailyStart and DailyEnd are offsets from local midnight.
type BatchSpec struct {
	StartDate    time.Time
	EndDate      time.Time
	Weekdays     []time.Weekday
	DailyStart   time.Duration
	DailyEnd     time.Duration
	SlotDuration time.Duration
}

var (
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrInvalidDailyWindow = errors.New("daily end must be after daily start")
	ErrInvalidDuration    = errors.New("slot duration must be positive")
	ErrNoWeekdays         = errors.New("at least one weekday is required")
)

func (s BatchSpec) validate() error {
	if s.SlotDuration <= 0 {
		return ErrInvalidDuration
	}
	if s.DailyEnd <= s.DailyStart {
		return ErrInvalidDailyWindow
	}
	if s.EndDate.Before(s.StartDate) {
		return ErrInvalidDateRange
	}
	if len(s.Weekdays) == 0 {
		return ErrNoWeekdays
	}
	return nil
}

// ExpandBatchSpec expands a batch spec into discrete candidate slots. The
// candidates tile each daily window left to right with no gaps and no
// overlap; a remainder shorter than SlotDuration at the end of the window is
// dropped rather than emitted as a short slot. Days outside the weekday set
// are skipped entirely. Pure computation, no I/O.
func ExpandBatchSpec(spec BatchSpec) ([]SlotRange, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	weekdays := make(map[time.Weekday]bool, len(spec.Weekdays))
	for _, wd := range spec.Weekdays {
		weekdays[wd] = true
	}

	loc := spec.StartDate.Location()
	first := time.Date(spec.StartDate.Year(), spec.StartDate.Month(), spec.StartDate.Day(), 0, 0, 0, 0, loc)
	last := time.Date(spec.EndDate.Year(), spec.EndDate.Month(), spec.EndDate.Day(), 0, 0, 0, 0, loc)

	var out []SlotRange
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !weekdays[day.Weekday()] {
			continue
		}

		windowEnd := day.Add(spec.DailyEnd)
		for start := day.Add(spec.DailyStart); !start.Add(spec.SlotDuration).After(windowEnd); start = start.Add(spec.SlotDuration) {
			out = append(out, SlotRange{
				Start: start,
				End:   start.Add(spec.SlotDuration),
			})
		}
	}

	return out, nil
}
