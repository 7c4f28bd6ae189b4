package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise/multi-tenant-booking/internal/booking"
)

func TestWriteDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"tenant not found", booking.ErrTenantNotFound, 404, "tenant_not_found"},
		{"slot not found", booking.ErrSlotNotFound, 404, "slot_not_found"},
		{"appointment not found", booking.ErrAppointmentNotFound, 404, "appointment_not_found"},
		{"invalid range", booking.ErrInvalidRange, 400, "invalid_request"},
		{"contact required", booking.ErrContactRequired, 400, "invalid_request"},
		{"slot overlap", booking.ErrSlotOverlap, 409, "slot_overlap"},
		{"slot already booked", booking.ErrSlotAlreadyBooked, 409, "slot_already_booked"},
		{"slot has appointment", booking.ErrSlotHasAppointment, 409, "slot_has_appointment"},
		{"slot in past", booking.ErrSlotInPast, 409, "slot_in_past"},
		{"tenant busy", booking.ErrTenantBusy, 409, "tenant_busy"},
		{"illegal transition", &booking.IllegalTransitionError{From: booking.StatusCompleted, To: booking.StatusCancelled}, 409, "illegal_transition"},
		{"wrapped sentinel", errors.Join(errors.New("context"), booking.ErrSlotOverlap), 409, "slot_overlap"},
		{"unknown error", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Error)
		})
	}
}

func TestSlotFilterFromQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/slots?status=available", nil)
	f, err := slotFilterFromQuery(req)
	require.NoError(t, err)
	require.NotNil(t, f.HasAppointment)
	require.NotNil(t, f.Future)
	assert.False(t, *f.HasAppointment)
	assert.True(t, *f.Future)

	req = httptest.NewRequest("GET", "/slots?status=booked", nil)
	f, err = slotFilterFromQuery(req)
	require.NoError(t, err)
	require.NotNil(t, f.HasAppointment)
	assert.True(t, *f.HasAppointment)
	assert.Nil(t, f.Future)

	req = httptest.NewRequest("GET", "/slots?status=past&from=2025-06-01T00:00:00Z&to=2025-06-30T00:00:00Z", nil)
	f, err = slotFilterFromQuery(req)
	require.NoError(t, err)
	require.NotNil(t, f.Future)
	assert.False(t, *f.Future)
	require.NotNil(t, f.From)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), f.From.UTC())

	req = httptest.NewRequest("GET", "/slots?status=bogus", nil)
	_, err = slotFilterFromQuery(req)
	assert.Error(t, err)

	req = httptest.NewRequest("GET", "/slots?from=not-a-time", nil)
	_, err = slotFilterFromQuery(req)
	assert.Error(t, err)
}

func TestBatchSpecFromRequest(t *testing.T) {
	spec, err := batchSpecFromRequest(BatchCreateSlotsRequest{
		StartDate:       "2025-06-02",
		EndDate:         "2025-06-06",
		Weekdays:        []string{"Monday", "wednesday", "FRIDAY"},
		DailyStart:      "09:00",
		DailyEnd:        "17:30",
		DurationMinutes: 45,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), spec.StartDate)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, spec.Weekdays)
	assert.Equal(t, 9*time.Hour, spec.DailyStart)
	assert.Equal(t, 17*time.Hour+30*time.Minute, spec.DailyEnd)
	assert.Equal(t, 45*time.Minute, spec.SlotDuration)
}

func TestBatchSpecFromRequestRejectsBadInput(t *testing.T) {
	valid := BatchCreateSlotsRequest{
		StartDate:       "2025-06-02",
		EndDate:         "2025-06-06",
		Weekdays:        []string{"monday"},
		DailyStart:      "09:00",
		DailyEnd:        "17:00",
		DurationMinutes: 30,
	}

	cases := []struct {
		name   string
		mutate func(*BatchCreateSlotsRequest)
	}{
		{"bad start date", func(r *BatchCreateSlotsRequest) { r.StartDate = "06/02/2025" }},
		{"bad end date", func(r *BatchCreateSlotsRequest) { r.EndDate = "whenever" }},
		{"bad daily start", func(r *BatchCreateSlotsRequest) { r.DailyStart = "9am" }},
		{"bad weekday", func(r *BatchCreateSlotsRequest) { r.Weekdays = []string{"funday"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := batchSpecFromRequest(req)
			assert.Error(t, err)
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	d, err := parseTimeOfDay("08:15")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour+15*time.Minute, d)

	_, err = parseTimeOfDay("25:00")
	assert.Error(t, err)
}
