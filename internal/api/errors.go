package api

import (
	"errors"
	"net/http"

	"github.com/bookwise/multi-tenant-booking/internal/booking"
)

// writeDomainError maps core errors onto HTTP statuses. Conflicts lost to a
// concurrent writer surface exactly like pre-check conflicts so callers
// treat both as "refresh and retry".
func writeDomainError(w http.ResponseWriter, err error) {
	var illegal *booking.IllegalTransitionError
	if errors.As(err, &illegal) {
		writeError(w, http.StatusConflict, "illegal_transition", illegal.Error())
		return
	}

	switch {
	case errors.Is(err, booking.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "tenant_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrContactRequired),
		errors.Is(err, booking.ErrUnknownStatus),
		errors.Is(err, booking.ErrInvalidDateRange),
		errors.Is(err, booking.ErrInvalidDailyWindow),
		errors.Is(err, booking.ErrInvalidDuration),
		errors.Is(err, booking.ErrNoWeekdays):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, booking.ErrSlotOverlap):
		writeError(w, http.StatusConflict, "slot_overlap", err.Error())
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, booking.ErrSlotHasAppointment):
		writeError(w, http.StatusConflict, "slot_has_appointment", err.Error())
	case errors.Is(err, booking.ErrSlotInPast):
		writeError(w, http.StatusConflict, "slot_in_past", err.Error())
	case errors.Is(err, booking.ErrTenantSlugTaken):
		writeError(w, http.StatusConflict, "tenant_slug_taken", err.Error())
	case errors.Is(err, booking.ErrTenantBusy):
		writeError(w, http.StatusConflict, "tenant_busy", "tenant calendar is being modified, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
