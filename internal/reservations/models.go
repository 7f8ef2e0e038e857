package reservations

import (
	"time"

	"buslane/internal/trips"

	"github.com/google/uuid"
)

// Reservation is one ledger entry. Seats live in a child table so multi-seat
// bookings stay one reservation with one lifecycle. UserID is a weak
// reference: deleting the user does not touch the ledger.
type Reservation struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	TripID uuid.UUID `json:"trip_id" gorm:"type:uuid;index;not null"`

	// Date is the travel date key, normalized to YYYY-MM-DD.
	Date string `json:"date" gorm:"size:10;not null;index:idx_reservations_trip_date,composite:trip_date"`

	SegmentOrigin      string  `json:"segment_origin" gorm:"not null;size:255"`
	SegmentDestination string  `json:"segment_destination" gorm:"not null;size:255"`
	Price              float64 `json:"price" gorm:"not null"`

	Status Status `json:"status" gorm:"size:20;not null;default:'confirmed';index"`

	Seats       []ReservationSeat `json:"seats" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`
	Transitions []Transition      `json:"-" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// ReservationSeat is one claimed seat number of a reservation.
type ReservationSeat struct {
	ID            uuid.UUID `json:"-" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ReservationID uuid.UUID `json:"-" gorm:"type:uuid;index;not null"`
	SeatNumber    int       `json:"seat_number" gorm:"not null"`
}

// Transition is one append-only audit row recording a status change and who
// drove it.
type Transition struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ReservationID uuid.UUID `json:"reservation_id" gorm:"type:uuid;index;not null"`
	FromStatus    Status    `json:"from_status" gorm:"size:20;not null"`
	ToStatus      Status    `json:"to_status" gorm:"size:20;not null"`
	Actor         string    `json:"actor" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (ReservationSeat) TableName() string {
	return "reservation_seats"
}

func (Transition) TableName() string {
	return "reservation_transitions"
}

// SeatNumbers flattens the child rows into the request-order seat list.
func (r *Reservation) SeatNumbers() []int {
	seats := make([]int, 0, len(r.Seats))
	for _, seat := range r.Seats {
		seats = append(seats, seat.SeatNumber)
	}
	return seats
}

// CreateReservationRequest is the booking payload. Field names keep the
// French keys the original clients send. Segment is optional; omitted means
// the trip's main line.
type CreateReservationRequest struct {
	TripID  string                `json:"trajet" binding:"required,uuid"`
	Seats   []int                 `json:"seats" binding:"required,min=1,dive,min=1"`
	Segment *trips.SegmentRequest `json:"segment" binding:"omitempty"`
}

// ReservationListQuery filters the admin listing.
type ReservationListQuery struct {
	TripID string `form:"trajet" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=confirmed validated cancelled"`
	Date   string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ReservationResponse is the API view of one ledger entry. UserName is
// resolved on read; reservations of deleted users display "unknown".
type ReservationResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	UserName           string     `json:"user_name,omitempty"`
	TripID             string     `json:"trip_id"`
	Date               string     `json:"date"`
	Seats              []int      `json:"seats"`
	SegmentOrigin      string     `json:"depart"`
	SegmentDestination string     `json:"arrivee"`
	Price              float64    `json:"price"`
	Status             Status     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	ValidatedAt        *time.Time `json:"validated_at,omitempty"`

	Trip *trips.TripResponse `json:"trajet,omitempty"`
}

// TakenSeatResponse is one occupied seat on the public booking page. The
// client reads the `seat` field to gray out taken seats.
type TakenSeatResponse struct {
	Seat int `json:"seat"`
}

// PaginatedReservations is the list envelope for admin queries.
type PaginatedReservations struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

// SeatMapResponse is the availability view of one trip-date.
type SeatMapResponse struct {
	TripID   string             `json:"trip_id"`
	Date     string             `json:"date"`
	Capacity int                `json:"capacity"`
	Seats    map[int]SeatView   `json:"seats"`
	Summary  SeatMapSummaryView `json:"summary"`
}

// SeatView is one seat's public state. Reservation ownership is not exposed.
type SeatView struct {
	Status string `json:"status"`
}

// SeatMapSummaryView aggregates the counts clients render.
type SeatMapSummaryView struct {
	Free   int `json:"free"`
	Held   int `json:"held"`
	Booked int `json:"booked"`
}

// ToResponse converts a ledger entry; userName may be empty when unresolved.
func (r *Reservation) ToResponse(userName string) ReservationResponse {
	return ReservationResponse{
		ID:                 r.ID.String(),
		UserID:             r.UserID.String(),
		UserName:           userName,
		TripID:             r.TripID.String(),
		Date:               r.Date,
		Seats:              r.SeatNumbers(),
		SegmentOrigin:      r.SegmentOrigin,
		SegmentDestination: r.SegmentDestination,
		Price:              r.Price,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		CancelledAt:        r.CancelledAt,
		ValidatedAt:        r.ValidatedAt,
	}
}
