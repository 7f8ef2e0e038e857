package routes

import (
	"context"

	"buslane/internal/activity"
	"buslane/internal/notifier"
	"buslane/internal/reservations"
)

// reservationEvents bridges ledger lifecycle callbacks onto the live event
// stream and the dashboard feeds. Implements reservations.EventSink.
type reservationEvents struct {
	events   *notifier.Service
	activity activity.Service
}

func (a *reservationEvents) ReservationCreated(r reservations.ReservationResponse) {
	a.events.Emit(notifier.EventReservationCreated, notifier.TopicReservations, r)
	a.activity.RecordNotification(context.Background(), "reservation",
		"new reservation for "+r.SegmentOrigin+" → "+r.SegmentDestination)
	a.activity.RecordLog(context.Background(), r.UserID, "reservation_created", r.ID)
}

func (a *reservationEvents) ReservationCancelled(r reservations.ReservationResponse) {
	a.events.Emit(notifier.EventReservationCancelled, notifier.TopicReservations, r)
	a.activity.RecordNotification(context.Background(), "cancellation",
		"reservation cancelled for "+r.SegmentOrigin+" → "+r.SegmentDestination)
	a.activity.RecordLog(context.Background(), r.UserID, "reservation_cancelled", r.ID)
}

func (a *reservationEvents) ReservationDeleted(r reservations.ReservationResponse) {
	a.events.Emit(notifier.EventReservationDeleted, notifier.TopicReservations, r)
	a.activity.RecordNotification(context.Background(), "reservation",
		"reservation deleted for "+r.SegmentOrigin+" → "+r.SegmentDestination)
	a.activity.RecordLog(context.Background(), "admin", "reservation_deleted", r.ID)
}

func (a *reservationEvents) ReservationValidated(r reservations.ReservationResponse) {
	// Clients listen for a generic update on boarding validation.
	a.events.Emit(notifier.EventReservationUpdated, notifier.TopicReservations, r)
	a.activity.RecordLog(context.Background(), r.UserID, "reservation_validated", r.ID)
}

// authEvents announces new accounts. Implements auth.EventSink.
type authEvents struct {
	events   *notifier.Service
	activity activity.Service
}

func (a *authEvents) UserRegistered(ctx context.Context, userID, email string) {
	a.events.Emit(notifier.EventNewUser, notifier.TopicUsers, map[string]string{
		"user_id": userID,
		"email":   email,
	})
	a.activity.RecordNotification(ctx, "user", "new account: "+email)
	a.activity.RecordLog(ctx, userID, "user_registered", email)
}

// userActivity records account removals. Implements users.ActivitySink.
type userActivity struct {
	activity activity.Service
}

func (a *userActivity) UserDeleted(ctx context.Context, email string) {
	a.activity.RecordNotification(ctx, "user", "account deleted: "+email)
	a.activity.RecordLog(ctx, "admin", "user_deleted", email)
}
