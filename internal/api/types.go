package api

import (
	"time"

	"github.com/google/uuid"
)

type CreateTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TenantResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type UpdateSlotRequest struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type SlotResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BatchCreateSlotsRequest mirrors the generator spec: dates are
// YYYY-MM-DD, daily window bounds are HH:MM, weekdays are lowercase names.
type BatchCreateSlotsRequest struct {
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Weekdays        []string `json:"weekdays"`
	DailyStart      string   `json:"daily_start"`
	DailyEnd        string   `json:"daily_end"`
	DurationMinutes int      `json:"duration_minutes"`
}

type BatchDurationRequest struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	DurationMinutes int       `json:"duration_minutes"`
}

type SlotRangeResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type BatchResultResponse struct {
	CreatedCount  int                 `json:"created_count"`
	SkippedRanges []SlotRangeResponse `json:"skipped_ranges"`
}

type BatchDeleteResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

type ContactInfoPayload struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type CreateAppointmentRequest struct {
	SlotID   string             `json:"slot_id"`
	Customer ContactInfoPayload `json:"customer"`
}

type RescheduleRequest struct {
	NewSlotID string `json:"new_slot_id"`
}

type AppointmentResponse struct {
	ID        uuid.UUID          `json:"id"`
	TenantID  uuid.UUID          `json:"tenant_id"`
	SlotID    uuid.UUID          `json:"slot_id"`
	Customer  ContactInfoPayload `json:"customer"`
	Status    string             `json:"status"`
	StartTime *time.Time         `json:"start_time,omitempty"`
	EndTime   *time.Time         `json:"end_time,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
