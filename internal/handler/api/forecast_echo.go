package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	models "RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	icache "RetailPulse/internal/service/cache"
	fmetrics "RetailPulse/internal/service/metrics"
	"RetailPulse/internal/service/ratelimit"
	"RetailPulse/internal/services/signals"
	"RetailPulse/internal/usecase"
	xhttp "RetailPulse/pkg/http"
	xlogger "RetailPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const forecastCacheTTL = 60 * time.Second

// Handler implements the Echo-based HTTP API.
type Handler struct {
	logger     *xlogger.Logger
	engine     *usecase.ForecastEngine
	batch      *usecase.BatchForecaster
	thresholds *usecase.ThresholdCalculator
	markdown   *usecase.MarkdownPolicy
	feed       *signals.SignalFeed
	cache      icache.BytesCache
	rl         *ratelimit.Limiter
	metrics    *fmetrics.ForecastMetrics
	healthFn   func(ctx context.Context) error
}

func NewHandler(
	logger *xlogger.Logger,
	engine *usecase.ForecastEngine,
	batch *usecase.BatchForecaster,
	thresholds *usecase.ThresholdCalculator,
	markdown *usecase.MarkdownPolicy,
	feed *signals.SignalFeed,
	m *fmetrics.ForecastMetrics,
) *Handler {
	return &Handler{
		logger:     logger,
		engine:     engine,
		batch:      batch,
		thresholds: thresholds,
		markdown:   markdown,
		feed:       feed,
		rl:         ratelimit.New(),
		metrics:    m,
	}
}

// SetCache injects a bytes cache for hot GET endpoints.
func (h *Handler) SetCache(c icache.BytesCache) { h.cache = c }

// SetHealthCheck injects the readiness probe dependency.
func (h *Handler) SetHealthCheck(fn func(ctx context.Context) error) { h.healthFn = fn }

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/v1")
	g.GET("/forecast/:product_id", h.Forecast)
	g.POST("/forecast", h.Forecast)
	g.POST("/forecast/batch", h.BatchForecast)

	g.GET("/thresholds/:product_id", h.Thresholds)
	g.POST("/thresholds/recalculate", h.RecalculateThresholds)
	g.PUT("/thresholds/:product_id/override", h.OverrideThreshold)

	g.GET("/perishables/:store_id", h.Perishables)
	g.POST("/markdowns/trigger", h.TriggerMarkdown)

	g.POST("/signals/social", h.IngestSocial)
	g.POST("/signals/weather", h.IngestWeather)
	g.POST("/signals/events", h.IngestEvents)
}

func (h *Handler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	horizon := domrepo.NormalizeHorizon(req.Horizon)

	if !h.rl.Allow(c.RealIP()+":forecast", 10, 5) {
		h.logger.Warn("forecast rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	cacheKey := "forecast:" + req.ProductID + ":" + req.StoreID + ":" + string(horizon)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("forecast cache_get_error", xlogger.Error(err))
		} else if ok {
			var cached models.ForecastResult
			if err := json.Unmarshal(b, &cached); err == nil {
				h.logger.Debug("forecast cache_hit", xlogger.String("key", cacheKey))
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.engine.Forecast(c.Request().Context(), usecase.ForecastParams{
		ProductID: req.ProductID,
		StoreID:   req.StoreID,
		Horizon:   horizon,
	})
	if err != nil {
		if errors.Is(err, domrepo.ErrUnknownProduct) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no sales history for product %s", req.ProductID))
		}
		h.logger.Error("forecast usecase error",
			xlogger.String("product", req.ProductID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("forecast failed").WithError(err))
	}

	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, forecastCacheTTL); err != nil {
				h.logger.Warn("forecast cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) BatchForecast(c echo.Context) error {
	req := &models.BatchForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	horizon := domrepo.NormalizeHorizon(req.Horizon)

	if !h.rl.Allow(c.RealIP()+":batch", 2, 1) {
		h.logger.Warn("batch forecast rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	res, err := h.batch.Run(c.Request().Context(), req.ProductIDs, req.StoreID, horizon)
	if err != nil {
		h.logger.Error("batch forecast error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("batch forecast failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.healthFn != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.healthFn(ctx); err != nil {
			status["status"] = "degraded"
			status["detail"] = err.Error()
		}
	}
	return xhttp.SuccessResponse(c, status)
}
