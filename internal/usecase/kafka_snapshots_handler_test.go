package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"TradeSim/internal/domain/models"
	"TradeSim/internal/services/technical"
	pkgkafka "TradeSim/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaSnapshotsHandler(t *testing.T) {
	store := &fakeStore{}
	m := newFakeMetrics()
	uc := newSummaryUC(&fakeIndicators{}, &fakePrices{}, m, WithReportStore(store))
	h := NewKafkaSnapshotsHandler("technical.snapshots", uc, m)
	assert.Equal(t, "technical.snapshots", h.Topic())

	snap := bullishSnapshot("eth")
	snap.Interval = "1h"
	snap.CurrentPrice = 110
	b, err := json.Marshal(snap)
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), b))
	require.Len(t, store.saved, 1)
	assert.Equal(t, "eth", store.saved[0].CurrencyID)
	assert.Equal(t, "1h", store.saved[0].Interval)
	assert.Equal(t, models.SignalStrongBuy, store.saved[0].Summary.Overall)
}

func TestKafkaSnapshotsHandlerRejectsBadMessages(t *testing.T) {
	m := newFakeMetrics()
	uc := newSummaryUC(&fakeIndicators{}, &fakePrices{}, m)
	h := NewKafkaSnapshotsHandler("t", uc, m)

	var perm *pkgkafka.PermanentError

	err := h.Handle(context.Background(), []byte("{not json"))
	assert.ErrorAs(t, err, &perm)

	err = h.Handle(context.Background(), []byte(`{"interval":"1d"}`))
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.ErrorAs(t, err, &perm)

	// moving averages without a price cannot be classified
	snap := bullishSnapshot("eth")
	b, _ := json.Marshal(snap)
	err = h.Handle(context.Background(), b)
	assert.ErrorIs(t, err, technical.ErrInvalidInput)
	assert.ErrorAs(t, err, &perm)

	assert.Equal(t, 1, m.errors["consumer_unmarshal"])
	assert.Equal(t, 1, m.errors["consumer_invalid"])
	assert.Equal(t, 1, m.errors["evaluate"])
}
