package reports

// Summary is the admin dashboard aggregate view, computed from the ledger on
// demand.
type Summary struct {
	TotalReservations  int64                `json:"total_reservations"`
	ActiveReservations int64                `json:"active_reservations"`
	TotalRevenue       float64              `json:"total_revenue"`
	StatusBreakdown    []StatusCount        `json:"status_breakdown"`
	ReservationsPerDay []DailyReservations  `json:"reservations_per_day"`
	RevenuePerMonth    []MonthlyRevenue     `json:"revenue_per_month"`
	TopDestinations    []DestinationVolume  `json:"top_destinations"`
}

// StatusCount is the ledger split by lifecycle state.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DailyReservations counts bookings per creation day.
type DailyReservations struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// MonthlyRevenue sums non-cancelled reservation prices per month.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// DestinationVolume ranks segment destinations by active bookings.
type DestinationVolume struct {
	Destination string `json:"destination"`
	Count       int64  `json:"count"`
}
