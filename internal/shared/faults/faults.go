package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a category of domain failure. Handlers map kinds to HTTP
// statuses; clients only need the kind to be distinguishable.
type Kind string

const (
	KindValidation            Kind = "validation_error"
	KindSeatUnavailable       Kind = "seat_unavailable"
	KindHoldExpired           Kind = "hold_expired"
	KindInvalidTransition     Kind = "invalid_transition"
	KindNotCancellable        Kind = "not_cancellable"
	KindNotConfirmed          Kind = "not_confirmed"
	KindCapacityConflict      Kind = "capacity_conflict"
	KindHasActiveReservations Kind = "has_active_reservations"
	KindNotFound              Kind = "not_found"
	KindUnauthorized          Kind = "unauthorized"
	KindForbidden             Kind = "forbidden"
	KindUnavailable           Kind = "service_unavailable"
)

// Error carries a failure kind plus a user-presentable message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a typed error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Convenience constructors for the taxonomy the booking flow surfaces.

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func SeatUnavailable(seat int) *Error {
	return New(KindSeatUnavailable, "seat %d is no longer available", seat)
}

func HoldExpired(holdID string) *Error {
	return New(KindHoldExpired, "hold %s has expired", holdID)
}

func InvalidTransition(from, to string) *Error {
	return New(KindInvalidTransition, "cannot transition reservation from %s to %s", from, to)
}

func NotCancellable(status string) *Error {
	return New(KindNotCancellable, "reservation in status %s cannot be cancelled", status)
}

func NotConfirmed(status string) *Error {
	return New(KindNotConfirmed, "reservation in status %s cannot be validated", status)
}

func CapacityConflict(requested, booked int) *Error {
	return New(KindCapacityConflict, "capacity %d is below the %d seats already booked", requested, booked)
}

func HasActiveReservations(count int64) *Error {
	return New(KindHasActiveReservations, "trip has %d active reservations", count)
}

func NotFound(what string) *Error {
	return New(KindNotFound, "%s not found", what)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

func Unavailable(cause error) *Error {
	return Wrap(KindUnavailable, cause, "service temporarily unavailable")
}

// KindOf returns the kind of err, or an empty kind for untyped errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the user-presentable message for err. Untyped errors get
// a generic message so internals are not leaked to clients.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error to the HTTP status code controllers should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindSeatUnavailable, KindInvalidTransition, KindNotCancellable,
		KindNotConfirmed, KindCapacityConflict, KindHasActiveReservations:
		return http.StatusConflict
	case KindHoldExpired:
		return http.StatusGone
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
