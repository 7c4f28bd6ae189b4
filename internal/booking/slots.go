package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSlot publishes a single availability slot for a tenant. The tenant
// lock plus the repository's in-transaction overlap check guarantee no two
// slots of the same tenant share an instant.
func (s *Service) CreateSlot(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*AvailabilitySlot, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	if _, err := s.repo.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	var created *AvailabilitySlot
	err := s.withTenantLock(ctx, tenantID, func(lockCtx context.Context) error {
		slot, err := s.repo.CreateSlot(lockCtx, tenantID, start, end)
		if err != nil {
			return err
		}
		created = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateSlot shifts a slot's times. Nil start or end keeps the current
// value. Rejected while an appointment is bound to the slot.
func (s *Service) UpdateSlot(ctx context.Context, id uuid.UUID, start, end *time.Time) (*AvailabilitySlot, error) {
	slot, err := s.repo.GetSlotByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newStart := slot.StartTime
	newEnd := slot.EndTime
	if start != nil {
		newStart = *start
	}
	if end != nil {
		newEnd = *end
	}
	if !newEnd.After(newStart) {
		return nil, ErrInvalidRange
	}

	var updated *AvailabilitySlot
	err = s.withTenantLock(ctx, slot.TenantID, func(lockCtx context.Context) error {
		u, err := s.repo.UpdateSlotTimes(lockCtx, id, newStart, newEnd)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSlot(ctx, id)
}

func (s *Service) GetSlot(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error) {
	return s.repo.GetSlotByID(ctx, id)
}

func (s *Service) ListSlots(ctx context.Context, tenantID uuid.UUID, f SlotFilter) ([]AvailabilitySlot, error) {
	return s.repo.ListSlots(ctx, tenantID, f, s.clock.Now())
}

// GenerateSlots expands the batch spec and attempts each candidate
// independently under one tenant lock. Candidates that would overlap an
// existing slot are skipped and reported; the rest are created. The result
// always accounts for every candidate, so there is no silent partial
// outcome.
func (s *Service) GenerateSlots(ctx context.Context, tenantID uuid.UUID, spec BatchSpec) (*BatchResult, error) {
	if _, err := s.repo.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	candidates, err := ExpandBatchSpec(spec)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	err = s.withTenantLock(ctx, tenantID, func(lockCtx context.Context) error {
		for _, c := range candidates {
			_, err := s.repo.CreateSlot(lockCtx, tenantID, c.Start, c.End)
			if errors.Is(err, ErrSlotOverlap) {
				result.SkippedRanges = append(result.SkippedRanges, c)
				continue
			}
			if err != nil {
				return fmt.Errorf("create slot %s: %w", c.Start, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("slot batch generated",
		"tenant_id", tenantID,
		"created", result.Created,
		"skipped", len(result.SkippedRanges),
	)

	return result, nil
}

// UpdateSlotDurations re-times every appointment-less slot in the range to
// its start plus the new duration. Slots whose new interval would overlap a
// neighbour, or that acquired an appointment meanwhile, are skipped and
// reported.
func (s *Service) UpdateSlotDurations(ctx context.Context, tenantID uuid.UUID, from, to time.Time, duration time.Duration) (*BatchResult, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if _, err := s.repo.GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}

	unbooked := false
	slots, err := s.repo.ListSlots(ctx, tenantID, SlotFilter{
		HasAppointment: &unbooked,
		From:           &from,
		To:             &to,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	err = s.withTenantLock(ctx, tenantID, func(lockCtx context.Context) error {
		for _, slot := range slots {
			if slot.Duration() == duration {
				continue
			}
			_, err := s.repo.UpdateSlotTimes(lockCtx, slot.ID, slot.StartTime, slot.StartTime.Add(duration))
			if errors.Is(err, ErrSlotOverlap) || errors.Is(err, ErrSlotHasAppointment) {
				result.SkippedRanges = append(result.SkippedRanges, SlotRange{Start: slot.StartTime, End: slot.EndTime})
				continue
			}
			if err != nil {
				return fmt.Errorf("update slot %s duration: %w", slot.ID, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteSlotsInRange removes the tenant's appointment-less slots inside
// [from, to]. Booked slots in the range are left alone.
func (s *Service) DeleteSlotsInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	if _, err := s.repo.GetTenantByID(ctx, tenantID); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.withTenantLock(ctx, tenantID, func(lockCtx context.Context) error {
		n, err := s.repo.DeleteSlotsInRange(lockCtx, tenantID, from, to)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// SweepExpiredSlots reclaims slots that ended before now and were never
// booked. Slots with a bound appointment are preserved as history even when
// fully past. Idempotent: a second immediate run deletes nothing.
func (s *Service) SweepExpiredSlots(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpiredSlots(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired slots: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("expired slots swept", "deleted", deleted)
	}
	return deleted, nil
}
