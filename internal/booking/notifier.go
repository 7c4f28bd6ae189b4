package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookwise/multi-tenant-booking/pkg/logging"
)

// TransitionEvent is handed to the Notifier after a status change commits.
type TransitionEvent struct {
	AppointmentID uuid.UUID
	TenantID      uuid.UUID
	NewStatus     AppointmentStatus
	Recipient     ContactInfo
}

// Notifier is the sink for transition events. The concrete channel (email,
// WhatsApp, SMS) lives outside the core; delivery is best effort and a
// failed Notify never rolls back the transition that produced the event.
type Notifier interface {
	Notify(ctx context.Context, ev TransitionEvent) error
}

// LogNotifier writes events to the log. Used as the default sink and in
// environments without a delivery channel.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, ev TransitionEvent) error {
	n.logger.Info("appointment notification",
		"appointment_id", ev.AppointmentID,
		"tenant_id", ev.TenantID,
		"new_status", ev.NewStatus,
		"recipient", ev.Recipient.Email,
	)
	return nil
}
