package seatmap

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatus is the state of one capacity unit of a trip-date.
type SeatStatus string

const (
	SeatFree   SeatStatus = "free"
	SeatHeld   SeatStatus = "held"
	SeatBooked SeatStatus = "booked"
)

// SeatState describes a single seat. ReservationID is set only for booked
// seats; ExpiresAt only for held ones (zero when the store cannot report it).
type SeatState struct {
	Status        SeatStatus `json:"status"`
	ReservationID string     `json:"reservation_id,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at,omitempty"`
}

// Hold is an exclusive, time-limited claim on a set of seats pending commit.
// The token carries everything a store needs to commit or release it.
type Hold struct {
	ID        string    `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Date      string    `json:"date"`
	Seats     []int     `json:"seats"`
	ExpiresAt time.Time `json:"expires_at"`
}
