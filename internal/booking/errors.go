package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange        = errors.New("slot end must be after start")
	ErrSlotOverlap         = errors.New("slot overlaps an existing slot")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotHasAppointment  = errors.New("slot has a bound appointment")
	ErrSlotAlreadyBooked   = errors.New("slot already has an appointment")
	ErrSlotInPast          = errors.New("slot is in the past")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantSlugTaken     = errors.New("tenant slug already in use")
	ErrTenantBusy          = errors.New("tenant calendar is being modified, please retry")
	ErrContactRequired     = errors.New("customer name and email are required")
	ErrUnknownStatus       = errors.New("unknown appointment status")
)

// IllegalTransitionError is returned when a target status is not reachable
// from the appointment's current status. The appointment is left unchanged.
type IllegalTransitionError struct {
	From AppointmentStatus
	To   AppointmentStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}
