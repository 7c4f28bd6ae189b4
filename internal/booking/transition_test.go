package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []AppointmentStatus{
	StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow,
}

func TestTransitionTableIsExact(t *testing.T) {
	legal := map[[2]AppointmentStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusNoShow}:    true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]AppointmentStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "transition %s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []AppointmentStatus{StatusCancelled, StatusCompleted, StatusNoShow} {
		for _, to := range allStatuses {
			assert.False(t, CanTransition(terminal, to), "%s must be terminal", terminal)
		}
	}
}

func TestCancelledCannotBeReCancelled(t *testing.T) {
	assert.False(t, CanTransition(StatusCancelled, StatusCancelled))
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("expired"))
	assert.False(t, ValidStatus(""))
}
