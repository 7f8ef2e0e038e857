package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	first := hub.Subscribe()
	second := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	event := NewEvent(EventReservationCreated, TopicReservations, map[string]string{"id": "r1"})
	hub.Publish(event)

	got := <-first.Events
	assert.Equal(t, EventReservationCreated, got.Type)
	assert.Equal(t, TopicReservations, got.Topic)

	got = <-second.Events
	assert.Equal(t, EventReservationCreated, got.Type)
}

func TestHub_CloseDetachesSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sub := hub.Subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-sub.Events
	assert.False(t, open)

	// Closing twice is harmless.
	sub.Close()
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sub := hub.Subscribe()

	// Overfill the buffer; the publisher must never block.
	for i := 0; i < 100; i++ {
		hub.Publish(NewEvent(EventNewNotification, TopicNotifications, i))
	}

	delivered := 0
	for {
		select {
		case <-sub.Events:
			delivered++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 64, delivered)
}

func TestHub_SubscribeAfterShutdown(t *testing.T) {
	hub := NewHub()
	hub.Shutdown()

	sub := hub.Subscribe()
	_, open := <-sub.Events
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount())

	// Publishing into a closed hub is a no-op.
	hub.Publish(NewEvent(EventNewUser, TopicUsers, nil))
	hub.Shutdown()
}

func TestService_EmitPublishesToHub(t *testing.T) {
	events := NewService(NewHub(), nil)
	defer events.Shutdown()

	sub := events.Hub().Subscribe()

	events.Emit(EventReservationCancelled, TopicReservations, map[string]string{"id": "r9"})

	got := <-sub.Events
	assert.Equal(t, EventReservationCancelled, got.Type)
	payload, ok := got.Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "r9", payload["id"])
}
