package entsoe

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCountry is returned when a country has no ENTSO-E domain mapping.
	ErrUnknownCountry = errors.New("entsoe: unknown country")
	// ErrUpstream is returned for non-success responses.
	ErrUpstream = errors.New("entsoe: upstream error")
	// ErrMalformedDocument is returned when a response body cannot be parsed.
	ErrMalformedDocument = errors.New("entsoe: malformed document")
)

// UpstreamError carries the HTTP status and the acknowledgement reason, if any.
type UpstreamError struct {
	StatusCode int
	Reason     string
}

func (e *UpstreamError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("entsoe: http %d", e.StatusCode)
	}
	return fmt.Sprintf("entsoe: http %d: %s", e.StatusCode, e.Reason)
}

// Unwrap lets errors.Is match ErrUpstream.
func (e *UpstreamError) Unwrap() error { return ErrUpstream }
