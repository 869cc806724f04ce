package resolver

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a resolution failed.
type ErrorKind string

const (
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindLocationUnavailable ErrorKind = "location_unavailable"
	KindTimeout             ErrorKind = "timeout"
	KindGeocodingFailed     ErrorKind = "geocoding_failed"
	KindAirportNotFound     ErrorKind = "airport_not_found"
)

var messages = map[ErrorKind]string{
	KindPermissionDenied:    "Location access is turned off. Allow location access to find the nearest airport.",
	KindLocationUnavailable: "Your location is currently unavailable.",
	KindTimeout:             "Finding your location took too long. Please try again.",
	KindGeocodingFailed:     "We couldn't work out where you are.",
	KindAirportNotFound:     "We couldn't find an airport near you.",
}

// ResolutionError is the terminal failure of a resolution. Message is
// suitable for showing to an end user; Err carries the underlying cause.
type ResolutionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrPermissionDenied    = &ResolutionError{Kind: KindPermissionDenied}
	ErrLocationUnavailable = &ResolutionError{Kind: KindLocationUnavailable}
	ErrTimeout             = &ResolutionError{Kind: KindTimeout}
	ErrGeocodingFailed     = &ResolutionError{Kind: KindGeocodingFailed}
	ErrAirportNotFound     = &ResolutionError{Kind: KindAirportNotFound}
)

// ErrSuperseded is returned by ResolveWait when a newer call took over.
var ErrSuperseded = errors.New("resolution superseded by a newer request")

func newError(kind ErrorKind, cause error) *ResolutionError {
	return &ResolutionError{Kind: kind, Message: messages[kind], Err: cause}
}

func (e *ResolutionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches any ResolutionError of the same kind.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a resolution error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
