package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookwise/multi-tenant-booking/internal/booking"
)

func createTenantHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTenantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name and slug are required")
			return
		}

		tenant, err := svc.CreateTenant(r.Context(), req.Name, req.Slug)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, TenantResponse{ID: tenant.ID, Name: tenant.Name, Slug: tenant.Slug})
	}
}

func getTenantHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := parseUUIDParam(w, r, "tenantID")
		if !ok {
			return
		}

		tenant, err := svc.GetTenant(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TenantResponse{ID: tenant.ID, Name: tenant.Name, Slug: tenant.Slug})
	}
}

func createSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := parseUUIDParam(w, r, "tenantID")
		if !ok {
			return
		}

		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		slot, err := svc.CreateSlot(r.Context(), tenantID, req.StartTime, req.EndTime)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, slotResponse(slot))
	}
}

func listSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := parseUUIDParam(w, r, "tenantID")
		if !ok {
			return
		}

		filter, err := slotFilterFromQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
			return
		}

		slots, err := svc.ListSlots(r.Context(), tenantID, filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for i := range slots {
			resp = append(resp, slotResponse(&slots[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		slot, err := svc.GetSlot(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, slotResponse(slot))
	}
}

func updateSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		var req UpdateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		slot, err := svc.UpdateSlot(r.Context(), id, req.StartTime, req.EndTime)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, slotResponse(slot))
	}
}

func deleteSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		if err := svc.DeleteSlot(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func batchCreateSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := parseUUIDParam(w, r, "tenantID")
		if !ok {
			return
		}

		var req BatchCreateSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		spec, err := batchSpecFromRequest(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_batch_spec", err.Error())
			return
		}

		result, err := svc.GenerateSlots(r.Context(), tenantID, spec)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, batchResultResponse(result))
	}
}

func batchUpdateDurationHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := parseUUIDParam(w, r, "tenantID")
		if !ok {
			return
		}

		var req BatchDurationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		duration := time.Duration(req.DurationMinutes) * time.Minute
		result, err := svc.UpdateSlotDurations(r.Context(), tenantID, req.From, req.To, duration)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, batchResultResponse(result))
	}
}

func batchDeleteSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := parseUUIDParam(w, r, "tenantID")
		if !ok {
			return
		}

		from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_filter", "from must be RFC3339")
			return
		}
		to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_filter", "to must be RFC3339")
			return
		}

		deleted, err := svc.DeleteSlotsInRange(r.Context(), tenantID, from, to)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BatchDeleteResponse{DeletedCount: deleted})
	}
}

// Helpers

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func slotResponse(s *booking.AvailabilitySlot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		TenantID:  s.TenantID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

func batchResultResponse(result *booking.BatchResult) BatchResultResponse {
	resp := BatchResultResponse{
		CreatedCount:  result.Created,
		SkippedRanges: make([]SlotRangeResponse, 0, len(result.SkippedRanges)),
	}
	for _, sr := range result.SkippedRanges {
		resp.SkippedRanges = append(resp.SkippedRanges, SlotRangeResponse{Start: sr.Start, End: sr.End})
	}
	return resp
}

// slotFilterFromQuery reads ?status=available|booked|future|past plus
// optional from/to bounds. The filters compose by AND.
func slotFilterFromQuery(r *http.Request) (booking.SlotFilter, error) {
	var f booking.SlotFilter

	switch status := r.URL.Query().Get("status"); status {
	case "":
	case "available":
		f.HasAppointment = boolPtr(false)
		f.Future = boolPtr(true)
	case "booked":
		f.HasAppointment = boolPtr(true)
	case "future":
		f.Future = boolPtr(true)
	case "past":
		f.Future = boolPtr(false)
	default:
		return f, fmt.Errorf("unknown status %q", status)
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("from must be RFC3339")
		}
		f.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("to must be RFC3339")
		}
		f.To = &t
	}

	return f, nil
}

func boolPtr(b bool) *bool { return &b }

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func batchSpecFromRequest(req BatchCreateSlotsRequest) (booking.BatchSpec, error) {
	var spec booking.BatchSpec

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return spec, fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return spec, fmt.Errorf("end_date must be YYYY-MM-DD")
	}

	dailyStart, err := parseTimeOfDay(req.DailyStart)
	if err != nil {
		return spec, fmt.Errorf("daily_start: %w", err)
	}
	dailyEnd, err := parseTimeOfDay(req.DailyEnd)
	if err != nil {
		return spec, fmt.Errorf("daily_end: %w", err)
	}

	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, name := range req.Weekdays {
		wd, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return spec, fmt.Errorf("unknown weekday %q", name)
		}
		weekdays = append(weekdays, wd)
	}

	spec = booking.BatchSpec{
		StartDate:    startDate,
		EndDate:      endDate,
		Weekdays:     weekdays,
		DailyStart:   dailyStart,
		DailyEnd:     dailyEnd,
		SlotDuration: time.Duration(req.DurationMinutes) * time.Minute,
	}
	return spec, nil
}

func parseTimeOfDay(raw string) (time.Duration, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("must be HH:MM")
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
