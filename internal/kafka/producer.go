// Package kafka publishes composite upload messages to the configured topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"lpr-ingest-backend/internal/models"
)

// deliveryTimeout bounds the wait for a broker delivery report. A publish
// attempt that exceeds it is treated as failed.
const deliveryTimeout = 5 * time.Second

// Producer is safe for concurrent use by multiple in-flight pipelines.
type Producer struct {
	producer *kafka.Producer
	topic    string
	log      *zap.Logger
}

func NewProducer(brokers, topic string, log *zap.Logger) (*Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"client.id":         "lpr-ingest-backend",
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{producer: p, topic: topic, log: log}, nil
}

// Publish serializes msg to JSON and sends it to the configured topic,
// waiting for the delivery report so the caller can tell data loss from
// success. No ordering across requests is promised.
func (p *Producer) Publish(ctx context.Context, msg *models.UploadMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize upload message: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          payload,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to enqueue message for topic %s: %w", p.topic, err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event for topic %s: %v", p.topic, ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery to topic %s failed: %w", p.topic, m.TopicPartition.Error)
		}
		p.log.Info("published upload message",
			zap.String("topic", p.topic),
			zap.Int32("partition", m.TopicPartition.Partition),
			zap.Int64("offset", int64(m.TopicPartition.Offset)))
		return nil
	case <-time.After(deliveryTimeout):
		return fmt.Errorf("timed out waiting for delivery report from topic %s", p.topic)
	case <-ctx.Done():
		return fmt.Errorf("publish to topic %s cancelled: %w", p.topic, ctx.Err())
	}
}

// Close flushes pending messages and shuts the producer down.
func (p *Producer) Close() {
	remaining := p.producer.Flush(int(deliveryTimeout / time.Millisecond))
	if remaining > 0 {
		p.log.Warn("not all messages flushed before close", zap.Int("remaining", remaining))
	}
	p.producer.Close()
}
