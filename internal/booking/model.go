package booking

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

type Tenant struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactInfo identifies the customer bound to an appointment. Bookings are
// anonymous: the triple is embedded rather than referencing a user row.
type ContactInfo struct {
	Name  string
	Email string
	Phone *string
}

type AvailabilitySlot struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *AvailabilitySlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Live reports whether the slot can still be booked time-wise. The cutoff
// compares the slot end, not the start, so a slot in progress still counts.
func (s *AvailabilitySlot) Live(now time.Time) bool {
	return s.EndTime.After(now)
}

type Appointment struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	SlotID    uuid.UUID
	Customer  ContactInfo
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AppointmentDetail struct {
	Appointment
	Slot *AvailabilitySlot
}

// SlotFilter narrows ListSlots. Nil fields are ignored; set fields compose
// by logical AND.
type SlotFilter struct {
	HasAppointment *bool
	Future         *bool
	From           *time.Time
	To             *time.Time
}

// AppointmentFilter narrows ListAppointments. Date bounds apply to the
// bound slot's start time.
type AppointmentFilter struct {
	Status *AppointmentStatus
	From   *time.Time
	To     *time.Time
}

// BatchResult reports the outcome of a batch slot operation. Candidates that
// would violate the overlap or has-appointment invariants are skipped, never
// silently coerced.
type BatchResult struct {
	Created       int
	SkippedRanges []SlotRange
}
