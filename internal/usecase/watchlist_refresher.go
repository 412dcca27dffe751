package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/pkg/logger"

	"github.com/robfig/cron/v3"
)

// WatchlistRefresher recomputes reports for a fixed set of currencies on a cron schedule.
type WatchlistRefresher struct {
	cron        *cron.Cron
	summary     *TechnicalSummaryUseCase
	currencies  []string
	intervals   []domrepo.Interval
	concurrency int
	log         *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewWatchlistRefresher(summary *TechnicalSummaryUseCase, currencies []string, intervals []string, log *logger.Logger) *WatchlistRefresher {
	ivs := make([]domrepo.Interval, 0, len(intervals))
	seen := map[domrepo.Interval]bool{}
	for _, s := range intervals {
		iv := domrepo.NormalizeInterval(s)
		if !seen[iv] {
			seen[iv] = true
			ivs = append(ivs, iv)
		}
	}
	if len(ivs) == 0 {
		ivs = append(ivs, domrepo.DefaultInterval())
	}
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &WatchlistRefresher{
		cron:        cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		summary:     summary,
		currencies:  currencies,
		intervals:   ivs,
		concurrency: 4,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register schedules RefreshAll under spec (standard cron or @every descriptors).
func (w *WatchlistRefresher) Register(spec string) error {
	if _, err := w.cron.AddFunc(spec, func() { w.RefreshAll(w.ctx) }); err != nil {
		return fmt.Errorf("register watchlist refresh %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (w *WatchlistRefresher) Start() {
	w.cron.Start()
	w.log.Info("watchlist refresher started", logger.Strings("currencies", w.currencies))
}

// Stop cancels in-flight refreshes and waits for the running job to return.
func (w *WatchlistRefresher) Stop() {
	w.cancel()
	<-w.cron.Stop().Done()
	w.log.Info("watchlist refresher stopped")
}

// RefreshAll computes one report per (currency, interval) pair and returns how many failed.
func (w *WatchlistRefresher) RefreshAll(ctx context.Context) int {
	start := time.Now()
	sem := make(chan struct{}, w.concurrency)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, id := range w.currencies {
		for _, iv := range w.intervals {
			if ctx.Err() != nil {
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(id string, iv domrepo.Interval) {
				defer wg.Done()
				defer func() { <-sem }()
				_, err := w.summary.GetSummary(ctx, GetSummaryParams{CurrencyID: id, Interval: iv})
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					w.log.Warn("watchlist refresh failed",
						logger.String("currency_id", id),
						logger.String("interval", string(iv)),
						logger.Error(err),
					)
				}
			}(id, iv)
		}
	}
	wg.Wait()
	w.log.Info("watchlist refreshed",
		logger.Int("pairs", len(w.currencies)*len(w.intervals)),
		logger.Int("failed", failed),
		logger.Duration("took_ms", time.Since(start)),
	)
	return failed
}

// cronLogger routes robfig/cron's logging through the service logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, logger.Any(key, kv[i+1]))
	}
	return fields
}
