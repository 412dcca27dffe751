package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
)

type fakeIndicators struct {
	mu    sync.Mutex
	snaps map[string]*models.IndicatorSnapshot
	err   error
	calls int
}

func (f *fakeIndicators) GetIndicators(_ context.Context, id string, iv domrepo.Interval) (*models.IndicatorSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.snaps[id]
	if !ok {
		return nil, errors.New("unknown currency")
	}
	cp := *s
	cp.Interval = string(iv)
	return &cp, nil
}

type fakePrices struct {
	prices map[string]float64
	err    error
}

func (f *fakePrices) GetCurrentPrice(_ context.Context, id string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.prices[id]
	if !ok {
		return 0, errors.New("no price")
	}
	return p, nil
}

type fakeFeed struct {
	price float64
	at    time.Time
	ok    bool
}

func (f *fakeFeed) Connect(context.Context) error             { return nil }
func (f *fakeFeed) Subscribe(context.Context, []string) error { return nil }
func (f *fakeFeed) Run(context.Context) error                 { return nil }
func (f *fakeFeed) Close() error                              { return nil }
func (f *fakeFeed) IsConnected() bool                         { return true }
func (f *fakeFeed) LastPrice(string) (float64, time.Time, bool) {
	return f.price, f.at, f.ok
}

type fakeStore struct {
	mu      sync.Mutex
	saved   []*models.TechnicalReport
	saveErr error
}

func (s *fakeStore) Save(_ context.Context, r *models.TechnicalReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, r)
	return nil
}

func (s *fakeStore) History(_ context.Context, id string, iv domrepo.Interval, limit int) ([]*models.TechnicalReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TechnicalReport
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if r := s.saved[i]; r.CurrencyID == id && r.Interval == string(iv) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.TechnicalReport
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, r *models.TechnicalReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	decisions map[string]int
	overall   map[string]int
	errors    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{decisions: map[string]int{}, overall: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordDecision(kind, decision string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[kind+"="+decision]++
}

func (m *fakeMetrics) RecordOverall(signal string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overall[signal]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}

// bullishSnapshot yields Buy from every oscillator and every moving average at price 110.
func bullishSnapshot(id string) *models.IndicatorSnapshot {
	mas := make([]models.MovingAverageReading, 0, 12)
	for _, p := range []int{5, 10, 20, 50, 100, 200} {
		for _, k := range []models.MAKind{models.MASimple, models.MAExponential} {
			mas = append(mas, models.MovingAverageReading{Period: p, Kind: k, Value: 100})
		}
	}
	return &models.IndicatorSnapshot{
		CurrencyID: id,
		Indicators: []models.IndicatorReading{
			{Kind: models.KindADX, Value: models.Scalar(30)},
			{Kind: models.KindBullBearPower, Value: models.Scalar(1)},
			{Kind: models.KindCCI, Value: models.Scalar(150)},
			{Kind: models.KindMACD, Value: models.MACDPair(5, 1)},
			{Kind: models.KindRSI, Value: models.Scalar(40)},
			{Kind: models.KindWilliamsR, Value: models.Scalar(-60)},
		},
		MovingAverages: mas,
	}
}
