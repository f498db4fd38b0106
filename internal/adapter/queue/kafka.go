package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KafkaJobPublisher announces accepted item sync jobs on a Kafka topic. Jobs are
// hashed on the company key so that a company's jobs share a partition.
type KafkaJobPublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewKafkaJobPublisher(brokers []string, topic string, log *logger.Logger) *KafkaJobPublisher {
	return &KafkaJobPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
}

func (p *KafkaJobPublisher) PublishItemSync(ctx context.Context, job model.ItemSyncJob) error {
	msg, err := itemSyncMessage(job)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish item sync job %s: %w", job.ID, err)
	}
	p.log.Debug("Published item sync job", "job_id", job.ID, "topic", p.writer.Topic)
	return nil
}

func (p *KafkaJobPublisher) Close() error {
	return p.writer.Close()
}

func itemSyncMessage(job model.ItemSyncJob) (kafka.Message, error) {
	value, err := json.Marshal(job)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode item sync job: %w", err)
	}
	return kafka.Message{
		Key:   []byte(job.CompanyName),
		Value: value,
		Time:  job.RequestedAt,
		Headers: []kafka.Header{
			{Key: "job_id", Value: []byte(job.ID)},
		},
	}, nil
}

var _ ports.JobPublisher = (*KafkaJobPublisher)(nil)
