package api

import (
	models "RetailPulse/internal/domain/models"
	xhttp "RetailPulse/pkg/http"
	xlogger "RetailPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *Handler) IngestSocial(c echo.Context) error {
	req := &models.SocialSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.feed.RecordSocial(models.SocialReading{
		ProductID: req.ProductID,
		Sentiment: req.Sentiment,
		Trending:  req.Trending,
		Mentions:  req.Mentions,
	})
	if h.metrics != nil {
		h.metrics.RecordSignalReading("social")
	}
	h.logger.Debug("social signal recorded", xlogger.String("product", req.ProductID))
	return xhttp.SuccessResponse(c, map[string]string{"status": "accepted"})
}

func (h *Handler) IngestWeather(c echo.Context) error {
	req := &models.WeatherSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.feed.RecordWeather(models.WeatherReading{
		StoreID:       req.StoreID,
		Temperature:   req.Temperature,
		Humidity:      req.Humidity,
		Precipitation: req.Precipitation,
	})
	if h.metrics != nil {
		h.metrics.RecordSignalReading("weather")
	}
	h.logger.Debug("weather signal recorded", xlogger.String("store", req.StoreID))
	return xhttp.SuccessResponse(c, map[string]string{"status": "accepted"})
}

func (h *Handler) IngestEvents(c echo.Context) error {
	req := &models.EventSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.feed.RecordEvents(models.EventReading{
		ProductID: req.ProductID,
		Count:     req.Count,
		Impact:    req.Impact,
	})
	if h.metrics != nil {
		h.metrics.RecordSignalReading("event")
	}
	h.logger.Debug("event signal recorded", xlogger.String("product", req.ProductID))
	return xhttp.SuccessResponse(c, map[string]string{"status": "accepted"})
}
