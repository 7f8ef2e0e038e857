package database

import (
	"buslane/internal/activity"
	"buslane/internal/reservations"
	"buslane/internal/trips"
	"buslane/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&trips.Trip{},
		&trips.Segment{},
		&reservations.Reservation{},
		&reservations.ReservationSeat{},
		&reservations.Transition{},
		&activity.Notification{},
		&activity.LogEntry{},
	); err != nil {
		return err
	}
	return migrateConstraints(db)
}

// migrateConstraints adds the concurrency-critical constraints AutoMigrate
// cannot express.
func migrateConstraints(db *gorm.DB) error {
	// A reservation can never claim the same seat twice.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_reservation
		ON reservation_seats (reservation_id, seat_number);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_trip_status
		ON reservations (trip_id, status);
	`).Error
	if err != nil {
		return err
	}

	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transitions_reservation
		ON reservation_transitions (reservation_id, created_at);
	`).Error
}
