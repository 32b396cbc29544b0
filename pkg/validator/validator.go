// Package validator holds the custom binding rules registered with gin's
// validator engine on startup.
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// Accepts international numbers with an optional leading + and the
	// separators people actually type (spaces, dashes, dots, parentheses).
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 .()-]{6,18}[0-9]$`)

	// HH:MM with an optional seconds component.
	timeSlotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
)

// Phone reports whether the field looks like a dialable phone number.
func Phone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// TimeSlot reports whether the field is a wall-clock time such as "10:30"
// or "10:30:00".
func TimeSlot(fl validator.FieldLevel) bool {
	return timeSlotPattern.MatchString(fl.Field().String())
}

// Rules returns the custom validators keyed by tag name, ready to hand to
// the validation middleware.
func Rules() map[string]validator.Func {
	return map[string]validator.Func{
		"phone":    Phone,
		"timeslot": TimeSlot,
	}
}
