package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookwise/multi-tenant-booking/internal/booking"
	"github.com/bookwise/multi-tenant-booking/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	tenants, err := seedTenants(context.Background(), pool, 20)
	if err != nil {
		log.Fatalf("seed tenants: %v", err)
	}
	if err := seedUsers(context.Background(), pool, tenants, 15); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	if err := seedSlots(context.Background(), pool, tenants); err != nil {
		log.Fatalf("seed slots: %v", err)
	}

	log.Println("seed complete")
}

func seedTenants(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d tenants", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Company()

		_, err := tx.Exec(ctx, `
			INSERT INTO tenants (id, name, slug, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, slug.Make(name)+"-"+id.String()[:8])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("tenants seeded")
	return ids, nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, tenants []uuid.UUID, perTenant int) error {
	log.Printf("seeding %d users per tenant", perTenant)

	for _, tenantID := range tenants {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := 0; i < perTenant; i++ {
			role := "user"
			if i == 0 {
				role = "admin"
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, tenant_id, name, email, phone, role, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			`, uuid.New(), tenantID, gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(), role)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Println("users seeded")
	return nil
}

// seedSlots tiles the next two weeks of weekday mornings for every tenant.
// The generator guarantees the candidates do not overlap, so they can be
// inserted directly.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, tenants []uuid.UUID) error {
	log.Printf("seeding slots for %d tenants", len(tenants))

	today := time.Now().Truncate(24 * time.Hour)
	spec := booking.BatchSpec{
		StartDate:    today,
		EndDate:      today.AddDate(0, 0, 13),
		Weekdays:     []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		DailyStart:   9 * time.Hour,
		DailyEnd:     17 * time.Hour,
		SlotDuration: 30 * time.Minute,
	}

	candidates, err := booking.ExpandBatchSpec(spec)
	if err != nil {
		return err
	}

	for _, tenantID := range tenants {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for _, c := range candidates {
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_slots (id, tenant_id, start_time, end_time, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, uuid.New(), tenantID, c.Start, c.End)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Printf("slots seeded: %d per tenant", len(candidates))
	return nil
}
