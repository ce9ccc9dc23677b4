package reconcile

import "errors"

var (
	// ErrUnknownCategory is returned when a psrType code is not a known generation category.
	ErrUnknownCategory = errors.New("reconcile: unknown category")
	// ErrInvalidSignConvention is returned when a sign convention name is not recognised.
	ErrInvalidSignConvention = errors.New("reconcile: invalid sign convention")
	// ErrEmptyCountry is returned when a country code is empty.
	ErrEmptyCountry = errors.New("reconcile: empty country code")
)
