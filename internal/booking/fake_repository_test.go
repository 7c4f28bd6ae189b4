package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/bookwise/multi-tenant-booking/internal/redis"
)

// fakeRepo is an in-memory Repository with the same semantics as the pg
// implementation. All methods run under one mutex, which mirrors the
// serializing effect of the real transactions and the slot_id unique
// constraint, so genuinely concurrent callers contend the way they would
// against Postgres.
type fakeRepo struct {
	mu           sync.Mutex
	tenants      map[uuid.UUID]*Tenant
	slots        map[uuid.UUID]*AvailabilitySlot
	appointments map[uuid.UUID]*Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tenants:      make(map[uuid.UUID]*Tenant),
		slots:        make(map[uuid.UUID]*AvailabilitySlot),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (r *fakeRepo) CreateTenant(ctx context.Context, name, slug string) (*Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tenants {
		if t.Slug == slug {
			return nil, ErrTenantSlugTaken
		}
	}
	t := &Tenant{ID: uuid.New(), Name: name, Slug: slug, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.tenants[t.ID] = t
	copied := *t
	return &copied, nil
}

func (r *fakeRepo) GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeRepo) overlapsLocked(tenantID uuid.UUID, start, end time.Time, exclude uuid.UUID) bool {
	for _, s := range r.slots {
		if s.TenantID != tenantID || s.ID == exclude {
			continue
		}
		if s.StartTime.Before(end) && start.Before(s.EndTime) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) slotBookedLocked(slotID uuid.UUID) bool {
	for _, a := range r.appointments {
		if a.SlotID == slotID {
			return true
		}
	}
	return false
}

func (r *fakeRepo) CreateSlot(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	if r.overlapsLocked(tenantID, start, end, uuid.Nil) {
		return nil, ErrSlotOverlap
	}

	s := &AvailabilitySlot{
		ID:        uuid.New(),
		TenantID:  tenantID,
		StartTime: start,
		EndTime:   end,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.slots[s.ID] = s
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) UpdateSlotTimes(ctx context.Context, id uuid.UUID, start, end time.Time) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if r.slotBookedLocked(id) {
		return nil, ErrSlotHasAppointment
	}
	if r.overlapsLocked(s.TenantID, start, end, id) {
		return nil, ErrSlotOverlap
	}

	s.StartTime = start
	s.EndTime = end
	s.UpdatedAt = time.Now()
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return ErrSlotNotFound
	}
	if r.slotBookedLocked(id) {
		return ErrSlotHasAppointment
	}
	delete(r.slots, id)
	return nil
}

func (r *fakeRepo) GetSlotByID(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) ListSlots(ctx context.Context, tenantID uuid.UUID, f SlotFilter, now time.Time) ([]AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []AvailabilitySlot
	for _, s := range r.slots {
		if s.TenantID != tenantID {
			continue
		}
		if f.HasAppointment != nil && r.slotBookedLocked(s.ID) != *f.HasAppointment {
			continue
		}
		if f.Future != nil && s.EndTime.After(now) != *f.Future {
			continue
		}
		if f.From != nil && s.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && s.EndTime.After(*f.To) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeRepo) CreateAppointment(ctx context.Context, tenantID, slotID uuid.UUID, customer ContactInfo, now time.Time) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.createAppointmentLocked(tenantID, slotID, customer, now)
}

func (r *fakeRepo) createAppointmentLocked(tenantID, slotID uuid.UUID, customer ContactInfo, now time.Time) (*Appointment, error) {
	s, ok := r.slots[slotID]
	if !ok || s.TenantID != tenantID {
		return nil, ErrSlotNotFound
	}
	if !s.EndTime.After(now) {
		return nil, ErrSlotInPast
	}
	if r.slotBookedLocked(slotID) {
		return nil, ErrSlotAlreadyBooked
	}

	a := &Appointment{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SlotID:    slotID,
		Customer:  customer,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.appointments[a.ID] = a
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	d := AppointmentDetail{Appointment: *a}
	if s, ok := r.slots[a.SlotID]; ok {
		copied := *s
		d.Slot = &copied
	}
	return &d, nil
}

func (r *fakeRepo) ListAppointments(ctx context.Context, tenantID uuid.UUID, f AppointmentFilter) ([]AppointmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []AppointmentDetail
	for _, a := range r.appointments {
		if a.TenantID != tenantID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		s, ok := r.slots[a.SlotID]
		if !ok {
			continue
		}
		if f.From != nil && s.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && s.EndTime.After(*f.To) {
			continue
		}
		copied := *s
		out = append(out, AppointmentDetail{Appointment: *a, Slot: &copied})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot.StartTime.Before(out[j].Slot.StartTime) })
	return out, nil
}

func (r *fakeRepo) UpdateContactInfo(ctx context.Context, id uuid.UUID, customer ContactInfo) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Customer = customer
	a.UpdatedAt = time.Now()
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeRepo) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) RescheduleAppointment(ctx context.Context, id, newSlotID uuid.UUID, now time.Time) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if !CanTransition(a.Status, StatusCancelled) {
		return nil, &IllegalTransitionError{From: a.Status, To: StatusCancelled}
	}

	s, ok := r.slots[newSlotID]
	if !ok || s.TenantID != a.TenantID {
		return nil, ErrSlotNotFound
	}
	if !s.EndTime.After(now) {
		return nil, ErrSlotInPast
	}
	if r.slotBookedLocked(newSlotID) {
		return nil, ErrSlotAlreadyBooked
	}

	a.Status = StatusCancelled
	a.UpdatedAt = time.Now()

	return r.createAppointmentLocked(a.TenantID, newSlotID, a.Customer, now)
}

func (r *fakeRepo) DeleteSlotsInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, s := range r.slots {
		if s.TenantID != tenantID || s.StartTime.Before(from) || s.EndTime.After(to) {
			continue
		}
		if r.slotBookedLocked(id) {
			continue
		}
		delete(r.slots, id)
		deleted++
	}
	return deleted, nil
}

func (r *fakeRepo) DeleteExpiredSlots(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, s := range r.slots {
		if !s.EndTime.Before(now) {
			continue
		}
		if r.slotBookedLocked(id) {
			continue
		}
		delete(r.slots, id)
		deleted++
	}
	return deleted, nil
}

// fakeLocker runs the critical section directly. The fake repository's
// mutex already provides the serialization the Redis lock exists for.
type fakeLocker struct{}

func (fakeLocker) WithTenantLock(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// busyLocker simulates a contended tenant lock.
type busyLocker struct{}

func (busyLocker) WithTenantLock(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureNotifier records every dispatched event.
type captureNotifier struct {
	mu     sync.Mutex
	events []TransitionEvent
}

func (n *captureNotifier) Notify(ctx context.Context, ev TransitionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *captureNotifier) Events() []TransitionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]TransitionEvent, len(n.events))
	copy(out, n.events)
	return out
}

// failingNotifier always errors, standing in for an unreachable channel.
type failingNotifier struct{}

func (failingNotifier) Notify(ctx context.Context, ev TransitionEvent) error {
	return context.DeadlineExceeded
}
