package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	icache "TradeSim/internal/service/cache"
	"TradeSim/internal/service/metrics"
	"TradeSim/internal/service/ratelimit"
	"TradeSim/internal/services/technical"
	"TradeSim/internal/usecase"
	xhttp "TradeSim/pkg/http"
	xlogger "TradeSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// TechnicalHandler serves technical summaries, history and ad-hoc classification.
type TechnicalHandler struct {
	logger   *xlogger.Logger
	summary  *usecase.TechnicalSummaryUseCase
	classify *usecase.ClassifyUseCase

	cache    icache.BytesCache
	cacheTTL time.Duration

	rl       *ratelimit.Limiter
	rlCap    float64
	rlRefill float64

	checks map[string]HealthCheck
}

// HandlerOption configures TechnicalHandler.
type HandlerOption func(*TechnicalHandler)

// WithCache caches summaries per currency and interval.
func WithCache(c icache.BytesCache, ttl time.Duration) HandlerOption {
	return func(h *TechnicalHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithRateLimit allows n summary requests per window and remote address.
func WithRateLimit(n int, window time.Duration) HandlerOption {
	return func(h *TechnicalHandler) {
		h.rlCap, h.rlRefill = ratelimit.PerWindow(n, window)
	}
}

// WithHealthCheck adds a dependency to /healthz.
func WithHealthCheck(name string, check HealthCheck) HandlerOption {
	return func(h *TechnicalHandler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

func NewTechnicalHandler(
	logger *xlogger.Logger,
	summary *usecase.TechnicalSummaryUseCase,
	classify *usecase.ClassifyUseCase,
	opts ...HandlerOption,
) *TechnicalHandler {
	metrics.Register()
	h := &TechnicalHandler{
		logger:   logger,
		summary:  summary,
		classify: classify,
		rl:       ratelimit.New(),
		checks:   make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TechnicalHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/technical")
	g.GET("", h.Summary)
	g.GET("/history", h.History)
	g.POST("/classify", h.Classify)
	g.GET("/overall", h.Overall)
	e.GET("/healthz", h.Health)
}

// Summary returns the technical report for one currency and interval.
func (h *TechnicalHandler) Summary(c echo.Context) error {
	const endpoint = "summary"
	defer observe(endpoint, time.Now())

	req := &models.TechnicalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint) {
		h.logger.Warn("technical.summary rate_limited", xlogger.String("remote", c.RealIP()))
		metrics.TechnicalErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}

	ctx := c.Request().Context()
	key := icache.Key("technical", req.CurrencyID, req.Interval)
	if b, ok := h.cached(ctx, key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	report, err := h.summary.GetSummary(ctx, usecase.GetSummaryParams{
		CurrencyID: req.CurrencyID,
		Interval:   domrepo.Interval(req.Interval),
	})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.remember(ctx, key, report)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, report)
}

// History lists stored reports, newest first.
func (h *TechnicalHandler) History(c echo.Context) error {
	const endpoint = "history"
	defer observe(endpoint, time.Now())

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	reports, err := h.summary.History(c.Request().Context(), usecase.HistoryParams{
		CurrencyID: req.CurrencyID,
		Interval:   domrepo.Interval(req.Interval),
		Limit:      req.Limit,
	})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	if since := xhttp.ParseTimeDefault(req.Since, time.Time{}); !since.IsZero() {
		kept := make([]*models.TechnicalReport, 0, len(reports))
		for _, r := range reports {
			if !r.Timestamp.Before(since) {
				kept = append(kept, r)
			}
		}
		reports = kept
	}
	return xhttp.ListResponse(c, reports, int64(len(reports)))
}

// Classify evaluates posted readings without calling the backend.
func (h *TechnicalHandler) Classify(c echo.Context) error {
	const endpoint = "classify"
	defer observe(endpoint, time.Now())

	req := &models.ClassifyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.classify.Classify(*req)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

type overallResponse struct {
	Buy    int                  `json:"buy"`
	Sell   int                  `json:"sell"`
	Signal models.OverallSignal `json:"signal"`
}

// Overall maps buy and sell counts onto an overall signal.
func (h *TechnicalHandler) Overall(c echo.Context) error {
	const endpoint = "overall"
	defer observe(endpoint, time.Now())

	req := &models.OverallRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	signal, err := h.classify.Overall(req.Buy, req.Sell)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, overallResponse{Buy: req.Buy, Sell: req.Sell, Signal: signal})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health runs every registered check.
func (h *TechnicalHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			res.Checks[name] = err.Error()
			res.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	return xhttp.DataResponse(c, code, res)
}

// Housekeep drops rate limit buckets idle for maxIdle and expired in-process cache entries.
func (h *TechnicalHandler) Housekeep(maxIdle time.Duration) {
	buckets := h.rl.Forget(maxIdle)
	swept := 0
	if s, ok := h.cache.(interface{ Sweep() int }); ok {
		swept = s.Sweep()
	}
	if buckets > 0 || swept > 0 {
		h.logger.Debug("housekeeping", xlogger.Int("buckets", buckets), xlogger.Int("cache_entries", swept))
	}
}

func (h *TechnicalHandler) allow(c echo.Context, endpoint string) bool {
	if h.rlCap <= 0 {
		return true
	}
	return h.rl.Allow(c.RealIP()+":"+endpoint, h.rlCap, h.rlRefill)
}

func (h *TechnicalHandler) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(ctx, key)
	if err != nil {
		h.logger.Warn("technical.summary cache_get_error", xlogger.String("key", key), xlogger.Error(err))
		metrics.CacheHits.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("hit").Inc()
	return b, true
}

func (h *TechnicalHandler) remember(ctx context.Context, key string, report *models.TechnicalReport) {
	if h.cache == nil || h.cacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(report)
	if err != nil {
		h.logger.Error("technical.summary marshal_error", xlogger.Error(err))
		return
	}
	if err := h.cache.SetBytes(ctx, key, b, h.cacheTTL); err != nil {
		h.logger.Warn("technical.summary cache_set_error", xlogger.String("key", key), xlogger.Error(err))
	}
}

func (h *TechnicalHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.TechnicalErrors.WithLabelValues(endpoint).Inc()
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("technical."+endpoint+" error", xlogger.Error(err))
	} else {
		h.logger.Warn("technical."+endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps use case and classifier errors onto transport errors.
func toAppError(err error) *xhttp.AppError {
	var inv *technical.InvalidInputError
	switch {
	case errors.Is(err, usecase.ErrMalformedSource):
		return xhttp.BadGatewayError("analytics backend returned malformed data").WithError(err)
	case errors.As(err, &inv):
		return xhttp.InvalidInputError(string(inv.Kind), inv.Error()).
			WithParam("reason", inv.Reason).WithError(err)
	case errors.Is(err, technical.ErrInvalidInput):
		return xhttp.InvalidInputError("", err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrInvalidParams):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrUnknownCurrency):
		return xhttp.NotFoundError("unknown currency").WithError(err)
	case errors.Is(err, usecase.ErrHistoryDisabled):
		return xhttp.ServiceUnavailableError("report history is disabled").WithError(err)
	case errors.Is(err, usecase.ErrSourceUnavailable):
		return xhttp.BadGatewayError("analytics backend unavailable").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.BadGatewayError("analytics backend timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.TechnicalLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
