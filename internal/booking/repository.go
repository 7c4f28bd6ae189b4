package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the service.
//
// Mutations are transactional: every method that writes either commits the
// whole change or leaves no trace. CreateSlot and UpdateSlotTimes take a
// per-tenant advisory lock inside their transaction so two concurrent
// overlapping writes cannot both pass validation, and CreateAppointment
// relies on the unique constraint on appointments.slot_id as the final
// arbiter against double booking.
type Repository interface {
	CreateTenant(ctx context.Context, name, slug string) (*Tenant, error)
	GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	CreateSlot(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*AvailabilitySlot, error)
	UpdateSlotTimes(ctx context.Context, id uuid.UUID, start, end time.Time) (*AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	GetSlotByID(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error)
	ListSlots(ctx context.Context, tenantID uuid.UUID, f SlotFilter, now time.Time) ([]AvailabilitySlot, error)

	CreateAppointment(ctx context.Context, tenantID, slotID uuid.UUID, customer ContactInfo, now time.Time) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)
	ListAppointments(ctx context.Context, tenantID uuid.UUID, f AppointmentFilter) ([]AppointmentDetail, error)
	UpdateContactInfo(ctx context.Context, id uuid.UUID, customer ContactInfo) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// UpdateAppointmentStatus is a compare-and-set: the update applies only
	// if the row still has status `from`, otherwise ErrAppointmentNotFound
	// is returned and the caller re-reads to find out why.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// RescheduleAppointment cancels the appointment and books newSlotID in
	// one transaction; if the new slot cannot be booked the original
	// appointment is left untouched.
	RescheduleAppointment(ctx context.Context, id, newSlotID uuid.UUID, now time.Time) (*Appointment, error)

	// DeleteSlotsInRange removes appointment-less slots whose interval lies
	// inside [from, to] and returns how many were deleted.
	DeleteSlotsInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)

	// DeleteExpiredSlots removes slots that ended before now and have no
	// bound appointment. Booked slots are preserved as history.
	DeleteExpiredSlots(ctx context.Context, now time.Time) (int64, error)
}
