package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it, which is how the SQL paths are tested without a live database.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: pool}
}

// NewPgRepositoryWithDB allows injecting mocks for tests.
func NewPgRepositoryWithDB(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Helpers

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	return &t, nil
}

func scanSlot(row pgx.Row) (*AvailabilitySlot, error) {
	var s AvailabilitySlot

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.StartTime,
		&s.EndTime,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var phone *string

	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.SlotID,
		&a.Customer.Name,
		&a.Customer.Email,
		&phone,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Customer.Phone = phone
	return &a, nil
}

// Tenants

func (r *PgRepository) CreateTenant(ctx context.Context, name, slug string) (*Tenant, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tenants (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, name, slug, created_at, updated_at
	`, uuid.New(), name, slug)

	t, err := scanTenant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTenantSlugTaken
		}
		return nil, err
	}
	return t, nil
}

func (r *PgRepository) GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, slug, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, id)
	return scanTenant(row)
}

// Slots

// CreateSlot inserts a slot after verifying no slot of the same tenant
// overlaps [start, end). The check and the insert share one transaction
// holding a tenant-scoped advisory lock, so concurrent creates for the same
// tenant serialize at the database even if the Redis lock is bypassed.
func (r *PgRepository) CreateSlot(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*AvailabilitySlot, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create slot: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	overlaps, err := tenantHasOverlap(ctx, tx, tenantID, start, end, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrSlotOverlap
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO availability_slots (id, tenant_id, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, tenant_id, start_time, end_time, created_at, updated_at
	`, uuid.New(), tenantID, start, end)

	slot, err := scanSlot(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create slot: %w", err)
	}

	return slot, nil
}

func (r *PgRepository) UpdateSlotTimes(ctx context.Context, id uuid.UUID, start, end time.Time) (*AvailabilitySlot, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update slot: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := getSlotForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := lockTenant(ctx, tx, slot.TenantID); err != nil {
		return nil, err
	}

	booked, err := slotHasAppointment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrSlotHasAppointment
	}

	overlaps, err := tenantHasOverlap(ctx, tx, slot.TenantID, start, end, id)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrSlotOverlap
	}

	row := tx.QueryRow(ctx, `
		UPDATE availability_slots
		SET start_time = $2,
		    end_time = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, tenant_id, start_time, end_time, created_at, updated_at
	`, id, start, end)

	updated, err := scanSlot(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update slot: %w", err)
	}

	return updated, nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete slot: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := getSlotForUpdate(ctx, tx, id); err != nil {
		return err
	}

	booked, err := slotHasAppointment(ctx, tx, id)
	if err != nil {
		return err
	}
	if booked {
		return ErrSlotHasAppointment
	}

	if _, err := tx.Exec(ctx, `DELETE FROM availability_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete slot: %w", err)
	}

	return nil
}

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, start_time, end_time, created_at, updated_at
		FROM availability_slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) ListSlots(ctx context.Context, tenantID uuid.UUID, f SlotFilter, now time.Time) ([]AvailabilitySlot, error) {
	q := `
		SELECT id, tenant_id, start_time, end_time, created_at, updated_at
		FROM availability_slots s
		WHERE tenant_id = $1`
	args := []any{tenantID}

	if f.HasAppointment != nil {
		if *f.HasAppointment {
			q += ` AND EXISTS (SELECT 1 FROM appointments a WHERE a.slot_id = s.id)`
		} else {
			q += ` AND NOT EXISTS (SELECT 1 FROM appointments a WHERE a.slot_id = s.id)`
		}
	}
	if f.Future != nil {
		args = append(args, now)
		if *f.Future {
			q += fmt.Sprintf(` AND end_time > $%d`, len(args))
		} else {
			q += fmt.Sprintf(` AND end_time <= $%d`, len(args))
		}
	}
	if f.From != nil {
		args = append(args, *f.From)
		q += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		q += fmt.Sprintf(` AND end_time <= $%d`, len(args))
	}
	q += ` ORDER BY start_time ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailabilitySlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Appointments

// CreateAppointment books a slot. The slot row is locked for the duration of
// the transaction; the unique constraint on appointments.slot_id is the
// final arbiter if two transactions race past the existence check anyway.
func (r *PgRepository) CreateAppointment(ctx context.Context, tenantID, slotID uuid.UUID, customer ContactInfo, now time.Time) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create appointment: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := getSlotForUpdate(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.TenantID != tenantID {
		return nil, ErrSlotNotFound
	}
	if !slot.Live(now) {
		return nil, ErrSlotInPast
	}

	booked, err := slotHasAppointment(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrSlotAlreadyBooked
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', now(), now())
		RETURNING id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at
	`, uuid.New(), tenantID, slotID, customer.Name, customer.Email, customer.Phone)

	appt, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("commit create appointment: %w", err)
	}

	return appt, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT a.id, a.tenant_id, a.slot_id, a.customer_name, a.customer_email, a.customer_phone, a.status, a.created_at, a.updated_at,
		       s.id, s.tenant_id, s.start_time, s.end_time, s.created_at, s.updated_at
		FROM appointments a
		JOIN availability_slots s ON s.id = a.slot_id
		WHERE a.id = $1
	`, id)

	return scanAppointmentDetail(row)
}

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail
	var slot AvailabilitySlot
	var phone *string

	err := row.Scan(
		&d.ID,
		&d.TenantID,
		&d.SlotID,
		&d.Customer.Name,
		&d.Customer.Email,
		&phone,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&slot.ID,
		&slot.TenantID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.Customer.Phone = phone
	d.Slot = &slot
	return &d, nil
}

func (r *PgRepository) ListAppointments(ctx context.Context, tenantID uuid.UUID, f AppointmentFilter) ([]AppointmentDetail, error) {
	q := `
		SELECT a.id, a.tenant_id, a.slot_id, a.customer_name, a.customer_email, a.customer_phone, a.status, a.created_at, a.updated_at,
		       s.id, s.tenant_id, s.start_time, s.end_time, s.created_at, s.updated_at
		FROM appointments a
		JOIN availability_slots s ON s.id = a.slot_id
		WHERE a.tenant_id = $1`
	args := []any{tenantID}

	if f.Status != nil {
		args = append(args, *f.Status)
		q += fmt.Sprintf(` AND a.status = $%d`, len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		q += fmt.Sprintf(` AND s.start_time >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		q += fmt.Sprintf(` AND s.end_time <= $%d`, len(args))
	}
	q += ` ORDER BY s.start_time ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpdateContactInfo(ctx context.Context, id uuid.UUID, customer ContactInfo) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET customer_name = $2,
		    customer_email = $3,
		    customer_phone = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at
	`, id, customer.Name, customer.Email, customer.Phone)

	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) RescheduleAppointment(ctx context.Context, id, newSlotID uuid.UUID, now time.Time) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reschedule: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, StatusCancelled) {
		return nil, &IllegalTransitionError{From: appt.Status, To: StatusCancelled}
	}

	slot, err := getSlotForUpdate(ctx, tx, newSlotID)
	if err != nil {
		return nil, err
	}
	if slot.TenantID != appt.TenantID {
		return nil, ErrSlotNotFound
	}
	if !slot.Live(now) {
		return nil, ErrSlotInPast
	}

	booked, err := slotHasAppointment(ctx, tx, newSlotID)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrSlotAlreadyBooked
	}

	if _, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
		    updated_at = now()
		WHERE id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("cancel original appointment: %w", err)
	}

	row = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', now(), now())
		RETURNING id, tenant_id, slot_id, customer_name, customer_email, customer_phone, status, created_at, updated_at
	`, uuid.New(), appt.TenantID, newSlotID, appt.Customer.Name, appt.Customer.Email, appt.Customer.Phone)

	rebooked, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("commit reschedule: %w", err)
	}

	return rebooked, nil
}

// Batch deletes

func (r *PgRepository) DeleteSlotsInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM availability_slots s
		WHERE tenant_id = $1
		  AND start_time >= $2
		  AND end_time <= $3
		  AND NOT EXISTS (SELECT 1 FROM appointments a WHERE a.slot_id = s.id)
	`, tenantID, from, to)
	if err != nil {
		return 0, fmt.Errorf("delete slots in range: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) DeleteExpiredSlots(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM availability_slots s
		WHERE end_time < $1
		  AND NOT EXISTS (SELECT 1 FROM appointments a WHERE a.slot_id = s.id)
	`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired slots: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Transaction helpers

func lockTenant(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, tenantID); err != nil {
		return fmt.Errorf("acquire tenant advisory lock: %w", err)
	}
	return nil
}

func getSlotForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*AvailabilitySlot, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, tenant_id, start_time, end_time, created_at, updated_at
		FROM availability_slots
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanSlot(row)
}

func slotHasAppointment(ctx context.Context, tx pgx.Tx, slotID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM appointments WHERE slot_id = $1)
	`, slotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot appointment: %w", err)
	}
	return exists, nil
}

// tenantHasOverlap reports whether any slot of the tenant, other than
// exclude, shares an instant with [start, end). Half-open comparison:
// touching boundaries do not overlap.
func tenantHasOverlap(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	q := `SELECT EXISTS(
		SELECT 1 FROM availability_slots
		WHERE tenant_id = $1
		  AND start_time < $3
		  AND end_time > $2`
	args := []any{tenantID, start, end}

	if exclude != uuid.Nil {
		q += ` AND id != $4`
		args = append(args, exclude)
	}
	q += `)`

	var exists bool
	if err := tx.QueryRow(ctx, q, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slot overlap: %w", err)
	}
	return exists, nil
}
