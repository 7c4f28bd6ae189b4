package booking

// transitions is the closed edge set of the appointment status machine.
// pending and confirmed are the only states with outgoing edges; completed,
// no_show and cancelled are terminal. Re-cancelling a cancelled appointment
// is rejected.
var transitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCancelled: true,
		StatusCompleted: true,
		StatusNoShow:    true,
	},
	StatusCancelled: {},
	StatusCompleted: {},
	StatusNoShow:    {},
}

// CanTransition reports whether target is reachable from current in one step.
func CanTransition(current, target AppointmentStatus) bool {
	return transitions[current][target]
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s AppointmentStatus) bool {
	_, ok := transitions[s]
	return ok
}
