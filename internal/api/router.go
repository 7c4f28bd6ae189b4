package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bookwise/multi-tenant-booking/internal/booking"
	"github.com/bookwise/multi-tenant-booking/pkg/logging"
)

type RouterConfig struct {
	Service *booking.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  *logging.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Tenant endpoints
	r.Post("/tenants", createTenantHandler(cfg.Service))
	r.Get("/tenants/{tenantID}", getTenantHandler(cfg.Service))

	// Slot endpoints
	r.Route("/tenants/{tenantID}/slots", func(r chi.Router) {
		r.Post("/", createSlotHandler(cfg.Service))
		r.Get("/", listSlotsHandler(cfg.Service))
		r.Delete("/", batchDeleteSlotsHandler(cfg.Service))
		r.Post("/batch", batchCreateSlotsHandler(cfg.Service))
		r.Patch("/duration", batchUpdateDurationHandler(cfg.Service))
	})
	r.Get("/slots/{id}", getSlotHandler(cfg.Service))
	r.Patch("/slots/{id}", updateSlotHandler(cfg.Service))
	r.Delete("/slots/{id}", deleteSlotHandler(cfg.Service))

	// Appointment endpoints
	r.Post("/tenants/{tenantID}/appointments", createAppointmentHandler(cfg.Service))
	r.Get("/tenants/{tenantID}/appointments", listAppointmentsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Patch("/appointments/{id}/contact", updateContactInfoHandler(cfg.Service))
	r.Post("/appointments/{id}/confirm", transitionHandler(cfg.Service, booking.StatusConfirmed))
	r.Post("/appointments/{id}/cancel", transitionHandler(cfg.Service, booking.StatusCancelled))
	r.Post("/appointments/{id}/complete", transitionHandler(cfg.Service, booking.StatusCompleted))
	r.Post("/appointments/{id}/no-show", transitionHandler(cfg.Service, booking.StatusNoShow))
	r.Post("/appointments/{id}/reschedule", rescheduleHandler(cfg.Service))
	r.Delete("/appointments/{id}", destroyAppointmentHandler(cfg.Service))

	return r
}
