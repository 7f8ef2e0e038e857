package notifier

import (
	"buslane/pkg/logger"
)

// Service fans events out to the in-process hub and, when configured, to the
// Kafka mirror. Publishing is fire-and-forget: a broker outage degrades the
// mirror, never the booking path.
type Service struct {
	hub      *Hub
	producer *KafkaProducer
	log      *logger.Logger
}

func NewService(hub *Hub, producer *KafkaProducer) *Service {
	return &Service{
		hub:      hub,
		producer: producer,
		log:      logger.GetDefault(),
	}
}

func (s *Service) Hub() *Hub {
	return s.hub
}

// Publish broadcasts to live subscribers and mirrors to Kafka when enabled.
func (s *Service) Publish(event Event) {
	s.hub.Publish(event)

	if s.producer != nil {
		if err := s.producer.Publish(event); err != nil {
			s.log.WithError(err).Warn("failed to mirror event to kafka",
				"event_type", event.Type)
		}
	}
}

// Emit builds and publishes an event in one call.
func (s *Service) Emit(eventType string, topic Topic, payload interface{}) {
	s.Publish(NewEvent(eventType, topic, payload))
}

// Shutdown closes the hub and the Kafka producer.
func (s *Service) Shutdown() {
	s.hub.Shutdown()
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close kafka producer")
		}
	}
}
