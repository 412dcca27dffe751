package repository

import (
	"context"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	pkgkafka "TradeSim/pkg/kafka"
)

// KafkaReportPublisher implements ReportPublisher for Kafka.
// Reports are keyed by currency so one currency stays on one partition.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)

// NewKafkaReportPublisher creates Kafka publisher.
func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, r *models.TechnicalReport) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.CurrencyID), r)
}
