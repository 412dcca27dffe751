package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	domsvc "TradeSim/internal/domain/service"
	"TradeSim/internal/services/technical"
	"TradeSim/pkg/logger"

	"github.com/google/uuid"
)

// TechnicalSummaryUseCase builds technical reports from the analytics backend.
type TechnicalSummaryUseCase struct {
	indicators domrepo.IndicatorSource
	prices     domrepo.PriceSource
	evaluator  domsvc.TechnicalEvaluator
	metrics    domrepo.Metrics
	log        *logger.Logger

	feed        domrepo.PriceFeed
	maxFeedAge  time.Duration
	store       domrepo.ReportStore
	publisher   domrepo.ReportPublisher
	timeout     time.Duration
	now         func() time.Time
	newReportID func() string
}

// SummaryOption configures optional collaborators of TechnicalSummaryUseCase.
type SummaryOption func(*TechnicalSummaryUseCase)

// WithPriceFeed enables falling back to streamed prices no older than maxAge.
func WithPriceFeed(feed domrepo.PriceFeed, maxAge time.Duration) SummaryOption {
	return func(uc *TechnicalSummaryUseCase) {
		uc.feed = feed
		uc.maxFeedAge = maxAge
	}
}

// WithReportStore persists every computed report.
func WithReportStore(store domrepo.ReportStore) SummaryOption {
	return func(uc *TechnicalSummaryUseCase) { uc.store = store }
}

// WithReportPublisher publishes every computed report.
func WithReportPublisher(p domrepo.ReportPublisher) SummaryOption {
	return func(uc *TechnicalSummaryUseCase) { uc.publisher = p }
}

// WithTimeout bounds one GetSummary call including both backend fetches.
func WithTimeout(d time.Duration) SummaryOption {
	return func(uc *TechnicalSummaryUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithClock overrides the time source and report ID generator.
func WithClock(now func() time.Time, newID func() string) SummaryOption {
	return func(uc *TechnicalSummaryUseCase) {
		uc.now = now
		uc.newReportID = newID
	}
}

func NewTechnicalSummaryUseCase(
	indicators domrepo.IndicatorSource,
	prices domrepo.PriceSource,
	evaluator domsvc.TechnicalEvaluator,
	metrics domrepo.Metrics,
	log *logger.Logger,
	opts ...SummaryOption,
) *TechnicalSummaryUseCase {
	uc := &TechnicalSummaryUseCase{
		indicators:  indicators,
		prices:      prices,
		evaluator:   evaluator,
		metrics:     metrics,
		log:         log,
		timeout:     5 * time.Second,
		now:         func() time.Time { return time.Now().UTC() },
		newReportID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type GetSummaryParams struct {
	CurrencyID string
	Interval   domrepo.Interval
}

// GetSummary fetches indicators and price concurrently and evaluates them.
func (uc *TechnicalSummaryUseCase) GetSummary(ctx context.Context, p GetSummaryParams) (*models.TechnicalReport, error) {
	if p.CurrencyID == "" {
		return nil, fmt.Errorf("%w: currency_id required", ErrInvalidParams)
	}
	if !domrepo.IsValidInterval(p.Interval) {
		p.Interval = domrepo.NormalizeInterval(string(p.Interval))
	}
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("technical_summary", time.Since(start).Seconds()) }()

	// Overall timeout
	fetchCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	type item struct {
		name     string
		snapshot *models.IndicatorSnapshot
		price    float64
		err      error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, err := uc.indicators.GetIndicators(fetchCtx, p.CurrencyID, p.Interval)
		ch <- item{name: "indicators", snapshot: snap, err: err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		price, err := uc.prices.GetCurrentPrice(fetchCtx, p.CurrencyID)
		ch <- item{name: "price", price: price, err: err}
	}()

	go func() { wg.Wait(); close(ch) }()

	var (
		snap     *models.IndicatorSnapshot
		price    float64
		priceErr error
		snapErr  error
	)
	for it := range ch {
		switch it.name {
		case "indicators":
			snap, snapErr = it.snapshot, it.err
		case "price":
			price, priceErr = it.price, it.err
		}
	}

	if snapErr != nil {
		uc.metrics.RecordError("fetch_indicators")
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, snapErr)
	}
	if snap == nil {
		uc.metrics.RecordError("fetch_indicators")
		return nil, fmt.Errorf("%w: empty snapshot for %s", ErrSourceUnavailable, p.CurrencyID)
	}
	if priceErr != nil {
		fallback, ok := uc.fallbackPrice(p.CurrencyID, snap)
		if !ok {
			uc.metrics.RecordError("fetch_price")
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, priceErr)
		}
		uc.log.Warn("price lookup failed, using fallback price",
			logger.String("currency_id", p.CurrencyID),
			logger.Float64("price", fallback),
			logger.Error(priceErr),
		)
		price = fallback
	}

	snap.CurrencyID = p.CurrencyID
	snap.Interval = string(p.Interval)
	report, err := uc.Evaluate(ctx, snap, price)
	if errors.Is(err, technical.ErrInvalidInput) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}
	return report, err
}

// fallbackPrice prefers a fresh streamed price, then the price the backend computed the snapshot at.
func (uc *TechnicalSummaryUseCase) fallbackPrice(currencyID string, snap *models.IndicatorSnapshot) (float64, bool) {
	if uc.feed != nil {
		if price, at, ok := uc.feed.LastPrice(currencyID); ok && price > 0 {
			if uc.maxFeedAge <= 0 || uc.now().Sub(at) <= uc.maxFeedAge {
				return price, true
			}
		}
	}
	if snap.CurrentPrice > 0 {
		return snap.CurrentPrice, true
	}
	return 0, false
}

// Evaluate classifies a snapshot at price, stamps the report and hands it to the store and publisher.
// Storage and publishing are best effort; their failures are logged, not returned.
func (uc *TechnicalSummaryUseCase) Evaluate(ctx context.Context, snap *models.IndicatorSnapshot, price float64) (*models.TechnicalReport, error) {
	summary, err := uc.evaluator.Evaluate(snap.Indicators, snap.MovingAverages, price)
	if err != nil {
		uc.metrics.RecordError("evaluate")
		return nil, fmt.Errorf("evaluate %s/%s: %w", snap.CurrencyID, snap.Interval, err)
	}

	report := &models.TechnicalReport{
		ID:         uc.newReportID(),
		CurrencyID: snap.CurrencyID,
		Interval:   snap.Interval,
		Timestamp:  uc.now(),
		Summary:    summary,
	}
	uc.record(report)
	uc.deliver(ctx, report)
	return report, nil
}

func (uc *TechnicalSummaryUseCase) record(r *models.TechnicalReport) {
	for _, o := range r.Summary.Oscillators {
		uc.metrics.RecordDecision(string(o.Kind), string(o.Decision))
	}
	for _, ma := range r.Summary.MovingAverages {
		uc.metrics.RecordDecision(fmt.Sprintf("%s_%d", ma.Kind, ma.Period), string(ma.Decision))
	}
	uc.metrics.RecordOverall(string(r.Summary.Overall))
	if r.Summary.CurrentPrice > 0 {
		uc.metrics.RecordLastPrice(r.CurrencyID, r.Summary.CurrentPrice)
	}
}

func (uc *TechnicalSummaryUseCase) deliver(ctx context.Context, r *models.TechnicalReport) {
	// detached so a caller hanging up does not drop the write
	ctx = context.WithoutCancel(ctx)
	if uc.store != nil {
		if err := uc.store.Save(ctx, r); err != nil {
			uc.metrics.RecordError("store_report")
			uc.log.Warn("store report failed", logger.String("report_id", r.ID), logger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, r); err != nil {
			uc.metrics.RecordError("publish_report")
			uc.log.Warn("publish report failed", logger.String("report_id", r.ID), logger.Error(err))
		}
	}
}

type HistoryParams struct {
	CurrencyID string
	Interval   domrepo.Interval
	Limit      int
}

// History returns the latest stored reports, newest first.
func (uc *TechnicalSummaryUseCase) History(ctx context.Context, p HistoryParams) ([]*models.TechnicalReport, error) {
	if uc.store == nil {
		return nil, ErrHistoryDisabled
	}
	if p.CurrencyID == "" {
		return nil, fmt.Errorf("%w: currency_id required", ErrInvalidParams)
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	reports, err := uc.store.History(ctx, p.CurrencyID, domrepo.NormalizeInterval(string(p.Interval)), p.Limit)
	if err != nil {
		uc.metrics.RecordError("history")
		return nil, fmt.Errorf("report history: %w", err)
	}
	return reports, nil
}

// IsSourceError reports whether err came from a failed backend fetch.
func IsSourceError(err error) bool { return errors.Is(err, ErrSourceUnavailable) }
