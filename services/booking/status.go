package booking

import (
	"barberhive/domain"
	"barberhive/models"
)

// Transition checks from -> to against the booking lifecycle table.
func Transition(from, to models.BookingStatus) error {
	if !to.IsValid() {
		return domain.ValidationError{Field: "status", Msg: "unknown status " + string(to)}
	}
	if !from.CanTransitionTo(to) {
		return domain.InvalidTransitionError{Resource: "booking", From: string(from), To: string(to)}
	}
	return nil
}
