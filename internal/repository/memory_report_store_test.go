package repository

import (
	"context"
	"fmt"
	"testing"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReportStoreHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, &models.TechnicalReport{ID: fmt.Sprint(i), CurrencyID: "btc", Interval: "1d"}))
	}
	require.NoError(t, s.Save(ctx, &models.TechnicalReport{ID: "other", CurrencyID: "btc", Interval: "1h"}))

	got, err := s.History(ctx, "btc", domrepo.Interval1d, 10)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"4", "3", "2"}, ids)

	got, err = s.History(ctx, "btc", domrepo.Interval1d, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ID)

	got, err = s.History(ctx, "eth", domrepo.Interval1d, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
