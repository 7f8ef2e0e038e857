package trips

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a scheduled route instance ("trajet"). Segments are owned by the
// trip and have no independent lifecycle.
type Trip struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Company       string    `json:"company" gorm:"not null;size:255"`
	Origin        string    `json:"origin" gorm:"not null;size:255;index"`
	Destination   string    `json:"destination" gorm:"not null;size:255;index"`
	Capacity      int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	Date          time.Time `json:"date" gorm:"not null;index"`
	DepartureTime string    `json:"departure_time" gorm:"size:5"`
	ArrivalTime   string    `json:"arrival_time" gorm:"size:5"`
	Price         float64   `json:"price" gorm:"not null;check:price >= 0"`

	Segments []Segment `json:"segments" gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE;"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Segment is a priced sub-range of a trip's full route.
type Segment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TripID      uuid.UUID `json:"trip_id" gorm:"type:uuid;index;not null"`
	Origin      string    `json:"origin" gorm:"not null;size:255"`
	Destination string    `json:"destination" gorm:"not null;size:255"`
	Price       float64   `json:"price" gorm:"not null;check:price >= 0"`
	Duration    string    `json:"duration,omitempty" gorm:"size:32"`
}

// TableName specifies the table name for GORM.
func (Trip) TableName() string {
	return "trips"
}

func (Segment) TableName() string {
	return "trip_segments"
}

// DateKey is the seat-map key component for the trip's travel date.
func (t *Trip) DateKey() string {
	return t.Date.Format("2006-01-02")
}

// DepartedBefore reports whether the trip's departure is before ref.
// Departure time parsing is lenient; a trip with no parsable time departs at
// midnight of its travel date.
func (t *Trip) DepartedBefore(ref time.Time) bool {
	departure := t.Date
	if parsed, err := time.Parse("15:04", t.DepartureTime); err == nil {
		departure = time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, t.Date.Location())
	}
	return departure.Before(ref)
}

// FindSegment resolves a sub-range by origin/destination. The main line
// counts as a segment priced at the trip's base price.
func (t *Trip) FindSegment(origin, destination string) (Segment, bool) {
	if origin == t.Origin && destination == t.Destination {
		return Segment{
			TripID:      t.ID,
			Origin:      t.Origin,
			Destination: t.Destination,
			Price:       t.Price,
		}, true
	}
	for _, seg := range t.Segments {
		if seg.Origin == origin && seg.Destination == destination {
			return seg, true
		}
	}
	return Segment{}, false
}

// SegmentRequest identifies a priced sub-range on booking requests.
type SegmentRequest struct {
	Origin      string `json:"depart" binding:"required"`
	Destination string `json:"arrivee" binding:"required"`
}

// CreateTripRequest is the operator payload for a new trip.
type CreateTripRequest struct {
	Company       string                 `json:"company" binding:"required,min=2,max=255"`
	Origin        string                 `json:"origin" binding:"required,min=2,max=255"`
	Destination   string                 `json:"destination" binding:"required,min=2,max=255"`
	Capacity      int                    `json:"capacity" binding:"required,min=1,max=100"`
	Date          time.Time              `json:"date" binding:"required"`
	DepartureTime string                 `json:"departure_time" binding:"omitempty,len=5"`
	ArrivalTime   string                 `json:"arrival_time" binding:"omitempty,len=5"`
	Price         float64                `json:"price" binding:"min=0"`
	Segments      []CreateSegmentRequest `json:"segments" binding:"omitempty,dive"`
}

// CreateSegmentRequest describes one owned segment.
type CreateSegmentRequest struct {
	Origin      string  `json:"origin" binding:"required,min=2,max=255"`
	Destination string  `json:"destination" binding:"required,min=2,max=255"`
	Price       float64 `json:"price" binding:"min=0"`
	Duration    string  `json:"duration" binding:"omitempty,max=32"`
}

// UpdateTripRequest patches an existing trip. Capacity may never drop below
// the booked-seat count.
type UpdateTripRequest struct {
	Company       *string                `json:"company" binding:"omitempty,min=2,max=255"`
	Origin        *string                `json:"origin" binding:"omitempty,min=2,max=255"`
	Destination   *string                `json:"destination" binding:"omitempty,min=2,max=255"`
	Capacity      *int                   `json:"capacity" binding:"omitempty,min=1,max=100"`
	Date          *time.Time             `json:"date"`
	DepartureTime *string                `json:"departure_time" binding:"omitempty,len=5"`
	ArrivalTime   *string                `json:"arrival_time" binding:"omitempty,len=5"`
	Price         *float64               `json:"price" binding:"omitempty,min=0"`
	Segments      []CreateSegmentRequest `json:"segments" binding:"omitempty,dive"`
}

// TripListQuery filters the public search. Query params keep the French
// names the original clients send.
type TripListQuery struct {
	Origin      string `form:"depart"`
	Destination string `form:"arrivee"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// TripResponse is the public view of a trip.
type TripResponse struct {
	ID             string            `json:"id"`
	Company        string            `json:"company"`
	Origin         string            `json:"origin"`
	Destination    string            `json:"destination"`
	Capacity       int               `json:"capacity"`
	BookedSeats    int               `json:"booked_seats"`
	AvailableSeats int               `json:"available_seats"`
	Date           time.Time         `json:"date"`
	DepartureTime  string            `json:"departure_time"`
	ArrivalTime    string            `json:"arrival_time"`
	Price          float64           `json:"price"`
	Segments       []SegmentResponse `json:"segments"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// SegmentResponse is the public view of a segment.
type SegmentResponse struct {
	ID          string  `json:"id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration,omitempty"`
}

// ToResponse converts a Trip; booked counts are filled by the service.
func (t *Trip) ToResponse(bookedSeats int) TripResponse {
	available := t.Capacity - bookedSeats
	if available < 0 {
		available = 0
	}

	segments := make([]SegmentResponse, 0, len(t.Segments))
	for _, seg := range t.Segments {
		segments = append(segments, SegmentResponse{
			ID:          seg.ID.String(),
			Origin:      seg.Origin,
			Destination: seg.Destination,
			Price:       seg.Price,
			Duration:    seg.Duration,
		})
	}

	return TripResponse{
		ID:             t.ID.String(),
		Company:        t.Company,
		Origin:         t.Origin,
		Destination:    t.Destination,
		Capacity:       t.Capacity,
		BookedSeats:    bookedSeats,
		AvailableSeats: available,
		Date:           t.Date,
		DepartureTime:  t.DepartureTime,
		ArrivalTime:    t.ArrivalTime,
		Price:          t.Price,
		Segments:       segments,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
