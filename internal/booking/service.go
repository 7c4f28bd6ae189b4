package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	redisclient "github.com/bookwise/multi-tenant-booking/internal/redis"
	"github.com/bookwise/multi-tenant-booking/pkg/logging"
)

// Service is the booking core: slot writes serialized per tenant, booking
// creation guarded against double booking, and the appointment status
// machine with post-commit notification dispatch.
type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier Notifier
	logger   *logging.Logger
	clock    Clock
}

func NewService(repo Repository, locker redisclient.Locker, notifier Notifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		logger:   logger,
		clock:    SystemClock(),
	}
}

// WithClock replaces the time source. Tests use this to pin "now".
func (s *Service) WithClock(c Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) CreateTenant(ctx context.Context, name, slug string) (*Tenant, error) {
	return s.repo.CreateTenant(ctx, name, slug)
}

func (s *Service) GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.GetTenantByID(ctx, id)
}

// notify dispatches a transition event after the status change has
// committed. Delivery failure is logged and swallowed: the transition has
// already happened and must not be re-failed.
func (s *Service) notify(ctx context.Context, appt *Appointment, newStatus AppointmentStatus) {
	ev := TransitionEvent{
		AppointmentID: appt.ID,
		TenantID:      appt.TenantID,
		NewStatus:     newStatus,
		Recipient:     appt.Customer,
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.Error("notification dispatch failed",
			"appointment_id", appt.ID,
			"new_status", newStatus,
			"error", err,
		)
	}
}

// withTenantLock wraps fn in the per-tenant Redis lock and translates a
// contended lock into ErrTenantBusy for callers.
func (s *Service) withTenantLock(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context) error) error {
	err := s.locker.WithTenantLock(ctx, tenantID, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrTenantBusy
	}
	return err
}
