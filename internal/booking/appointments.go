package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func validateContact(c ContactInfo) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" {
		return ErrContactRequired
	}
	return nil
}

// CreateAppointment books a live, unbooked slot for a customer. The
// repository performs the existence, liveness and already-booked checks
// atomically; under a race the unique constraint on slot_id decides the
// winner and the loser sees ErrSlotAlreadyBooked.
func (s *Service) CreateAppointment(ctx context.Context, tenantID, slotID uuid.UUID, customer ContactInfo) (*Appointment, error) {
	if err := validateContact(customer); err != nil {
		return nil, err
	}

	appt, err := s.repo.CreateAppointment(ctx, tenantID, slotID, customer, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"tenant_id", tenantID,
		"slot_id", slotID,
	)

	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Service) ListAppointments(ctx context.Context, tenantID uuid.UUID, f AppointmentFilter) ([]AppointmentDetail, error) {
	if f.Status != nil && !ValidStatus(*f.Status) {
		return nil, ErrUnknownStatus
	}
	return s.repo.ListAppointments(ctx, tenantID, f)
}

// UpdateContactInfo edits the customer triple without touching status.
func (s *Service) UpdateContactInfo(ctx context.Context, id uuid.UUID, customer ContactInfo) (*Appointment, error) {
	if err := validateContact(customer); err != nil {
		return nil, err
	}
	return s.repo.UpdateContactInfo(ctx, id, customer)
}

// DestroyAppointment removes the appointment row entirely. The bound slot
// becomes bookable again by definition: availability is "no appointment
// references this slot". Distinct from cancellation, which keeps the row.
func (s *Service) DestroyAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment destroyed", "appointment_id", id)
	return nil
}

// Transition moves an appointment to target if the status machine allows
// it. Persistence is a compare-and-set against the status the decision was
// made on, so a concurrent transition cannot be overwritten: the loser
// re-evaluates against the fresh state and gets IllegalTransitionError.
// The notification is dispatched only after the change is durable.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target AppointmentStatus) (*Appointment, error) {
	if !ValidStatus(target) {
		return nil, ErrUnknownStatus
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, target) {
		return nil, &IllegalTransitionError{From: appt.Status, To: target}
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, target)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// CAS miss: either the row is gone or a concurrent transition
			// won. Re-read and judge the target against the fresh state.
			current, readErr := s.repo.GetAppointmentByID(ctx, id)
			if readErr != nil {
				return nil, readErr
			}
			return nil, &IllegalTransitionError{From: current.Status, To: target}
		}
		return nil, fmt.Errorf("transition appointment: %w", err)
	}

	s.notify(ctx, updated, target)

	return updated, nil
}

func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusConfirmed)
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCancelled)
}

func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCompleted)
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusNoShow)
}

// Reschedule cancels the appointment and books newSlotID as one atomic
// unit. If the new slot is gone, past or already booked, nothing changes
// and the original appointment keeps its status. The cancellation event for
// the original is emitted only after the swap has committed.
func (s *Service) Reschedule(ctx context.Context, id, newSlotID uuid.UUID) (*Appointment, error) {
	original, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rebooked, err := s.repo.RescheduleAppointment(ctx, id, newSlotID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.notify(ctx, original, StatusCancelled)

	s.logger.Info("appointment rescheduled",
		"appointment_id", id,
		"new_appointment_id", rebooked.ID,
		"new_slot_id", newSlotID,
	)

	return rebooked, nil
}
