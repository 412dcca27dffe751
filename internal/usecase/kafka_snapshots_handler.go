package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/services/technical"
	pkgkafka "TradeSim/pkg/kafka"
)

// KafkaSnapshotsHandler consumes indicator snapshots pushed by the backend and evaluates them.
type KafkaSnapshotsHandler struct {
	topic   string
	summary *TechnicalSummaryUseCase
	metrics domrepo.Metrics
}

func NewKafkaSnapshotsHandler(topic string, summary *TechnicalSummaryUseCase, metrics domrepo.Metrics) *KafkaSnapshotsHandler {
	return &KafkaSnapshotsHandler{topic: topic, summary: summary, metrics: metrics}
}

func (h *KafkaSnapshotsHandler) Topic() string { return h.topic }

// incoming message schema: models.IndicatorSnapshot as JSON
func (h *KafkaSnapshotsHandler) Handle(ctx context.Context, b []byte) error {
	var snap models.IndicatorSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode snapshot: %w", err))
	}
	if snap.CurrencyID == "" {
		h.metrics.RecordError("consumer_invalid")
		return pkgkafka.Permanent(fmt.Errorf("%w: snapshot without currency_id", ErrInvalidParams))
	}
	snap.Interval = string(domrepo.NormalizeInterval(snap.Interval))
	if !snap.Timestamp.IsZero() {
		// E2E latency from backend compute time to now (approx)
		h.metrics.RecordLatency("snapshot_e2e_seconds", time.Since(snap.Timestamp).Seconds())
	}

	if _, err := h.summary.Evaluate(ctx, &snap, snap.CurrentPrice); err != nil {
		// the same snapshot classifies the same way on every retry
		if errors.Is(err, technical.ErrInvalidInput) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSnapshotsHandler)(nil)
