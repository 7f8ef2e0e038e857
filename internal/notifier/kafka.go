package notifier

import (
	"encoding/json"
	"fmt"

	"buslane/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaProducer mirrors hub events onto a Kafka topic so external consumers
// (and other instances) can follow the stream. Optional; the hub alone serves
// in-process subscribers.
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    topic,
		log:      logger.GetDefault(),
	}, nil
}

// Publish sends the event keyed by topic so all events of one concern land
// on the same partition, preserving their order.
func (p *KafkaProducer) Publish(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Topic),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to send event to kafka: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
