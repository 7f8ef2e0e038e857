package faults

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{SeatUnavailable(7), http.StatusConflict},
		{InvalidTransition("cancelled", "validated"), http.StatusConflict},
		{NotCancellable("validated"), http.StatusConflict},
		{NotConfirmed("cancelled"), http.StatusConflict},
		{CapacityConflict(10, 25), http.StatusConflict},
		{HasActiveReservations(3), http.StatusConflict},
		{HoldExpired("h1"), http.StatusGone},
		{NotFound("trip"), http.StatusNotFound},
		{Unauthorized("missing token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{Unavailable(errors.New("redis down")), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), "error: %v", tc.err)
	}
}

func TestKindOfAndIs(t *testing.T) {
	err := SeatUnavailable(12)
	assert.Equal(t, KindSeatUnavailable, KindOf(err))
	assert.True(t, Is(err, KindSeatUnavailable))
	assert.False(t, Is(err, KindValidation))

	// Kinds survive wrapping by callers.
	wrapped := fmt.Errorf("booking failed: %w", err)
	assert.True(t, Is(wrapped, KindSeatUnavailable))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "seat 12 is no longer available", MessageOf(SeatUnavailable(12)))
	assert.Equal(t, "trip not found", MessageOf(NotFound("trip")))

	// Untyped errors never leak internals to clients.
	assert.Equal(t, "internal server error", MessageOf(errors.New("pq: connection refused")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "service temporarily unavailable", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}
