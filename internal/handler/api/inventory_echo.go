package api

import (
	"errors"

	models "RetailPulse/internal/domain/models"
	domrepo "RetailPulse/internal/domain/repository"
	xhttp "RetailPulse/pkg/http"
	xlogger "RetailPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Thresholds(c echo.Context) error {
	req := &models.ThresholdQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	states, err := h.thresholds.List(c.Request().Context(), req.ProductID, req.StoreID)
	if err != nil {
		h.logger.Error("threshold list error",
			xlogger.String("product", req.ProductID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("threshold lookup failed").WithError(err))
	}
	if len(states) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no thresholds for product %s at store %s", req.ProductID, req.StoreID))
	}
	return xhttp.SuccessResponse(c, states)
}

func (h *Handler) RecalculateThresholds(c echo.Context) error {
	req := &models.ThresholdRecalcRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	states, err := h.thresholds.Recalculate(c.Request().Context(), req.ProductID, req.StoreID, req.LeadTimeDays, "manual recalculation")
	if err != nil {
		if errors.Is(err, domrepo.ErrUnknownProduct) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no sales history for product %s", req.ProductID))
		}
		h.logger.Error("threshold recalc error",
			xlogger.String("product", req.ProductID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("threshold recalculation failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, states)
}

func (h *Handler) OverrideThreshold(c echo.Context) error {
	req := &models.ThresholdOverrideRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	st, err := h.thresholds.Override(c.Request().Context(), req.ProductID, req.StoreID, models.ThresholdType(req.Type), req.Value, req.Reason)
	if err != nil {
		h.logger.Error("threshold override error",
			xlogger.String("product", req.ProductID),
			xlogger.String("type", req.Type),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("threshold override failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *Handler) Perishables(c echo.Context) error {
	req := &models.PerishablesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	states, err := h.markdown.ListByStore(c.Request().Context(), req.StoreID)
	if err != nil {
		h.logger.Error("perishables list error",
			xlogger.String("store", req.StoreID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("perishable lookup failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, states)
}

func (h *Handler) TriggerMarkdown(c echo.Context) error {
	req := &models.MarkdownTriggerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	decision, err := h.markdown.Trigger(c.Request().Context(), req.ProductID, req.StoreID)
	if err != nil {
		if errors.Is(err, domrepo.ErrUnknownPerishable) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no perishable state for product %s at store %s", req.ProductID, req.StoreID))
		}
		h.logger.Error("markdown trigger error",
			xlogger.String("product", req.ProductID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("markdown trigger failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, decision)
}
