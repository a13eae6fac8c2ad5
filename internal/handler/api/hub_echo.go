package api

import (
	"errors"
	"time"

	"MarketHub/internal/domain/models"
	"MarketHub/internal/hub"
	xhttp "MarketHub/pkg/http"
	xlogger "MarketHub/pkg/logger"
	"MarketHub/pkg/transport"

	"github.com/labstack/echo/v4"
)

// HubEchoHandler exposes the hub's producer/consumer contract over HTTP.
type HubEchoHandler struct {
	logger *xlogger.Logger
	hub    *hub.Hub
}

func NewHubEchoHandler(logger *xlogger.Logger, h *hub.Hub) *HubEchoHandler {
	return &HubEchoHandler{logger: logger, hub: h}
}

func (h *HubEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/latest", h.Latest)
	g.GET("/history", h.History)
	g.GET("/symbols", h.Symbols)
	g.GET("/signals/latest", h.LatestSignal)
	g.POST("/snapshots", h.PublishSnapshot)
	g.POST("/signals", h.PublishSignal)
	g.POST("/signals/drain", h.DrainSignals)
	g.POST("/signals/read", h.ReadSignals)

	e.GET("/ws/stream", h.Stream)
	e.GET("/healthz", h.Health)
}

func (h *HubEchoHandler) Latest(c echo.Context) error {
	req := &models.LatestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.hub.GetLatest(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.hubErrorResponse(c, "get latest", err)
	}
	if snap == nil {
		return xhttp.NotFoundResponse(c, "no snapshot for symbol "+req.Symbol)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *HubEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entries, err := h.hub.GetHistory(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		return h.hubErrorResponse(c, "get history", err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *HubEchoHandler) Symbols(c echo.Context) error {
	symbols, err := h.hub.ListTrackedSymbols(c.Request().Context())
	if err != nil {
		return h.hubErrorResponse(c, "list symbols", err)
	}
	return xhttp.ListResponse(c, symbols, int64(len(symbols)))
}

func (h *HubEchoHandler) LatestSignal(c echo.Context) error {
	req := &models.LatestSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.hub.LatestSignal(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.hubErrorResponse(c, "latest signal", err)
	}
	if sig == nil {
		return xhttp.NotFoundResponse(c, "no signal for symbol "+req.Symbol)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *HubEchoHandler) PublishSnapshot(c echo.Context) error {
	req := &models.PublishSnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := &models.Snapshot{
		Symbol:        req.Symbol,
		Price:         req.Price,
		ChangePercent: req.ChangePercent,
		DayHigh:       req.DayHigh,
		DayLow:        req.DayLow,
		Volume:        req.Volume,
		Source:        req.Source,
		Timestamp:     requestTime(req.Timestamp),
	}

	if err := h.hub.PublishSnapshot(c.Request().Context(), snap); err != nil {
		return h.hubErrorResponse(c, "publish snapshot", err)
	}
	return xhttp.CreatedResponse(c, snap)
}

func (h *HubEchoHandler) PublishSignal(c echo.Context) error {
	req := &models.PublishSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig := &models.Signal{
		Symbol:     req.Symbol,
		Directive:  models.Directive(req.Directive),
		Rationale:  req.Rationale,
		Confidence: req.Confidence,
		Source:     req.Source,
		Timestamp:  requestTime(req.Timestamp),
	}

	if err := h.hub.PublishSignal(c.Request().Context(), sig); err != nil {
		return h.hubErrorResponse(c, "publish signal", err)
	}
	return xhttp.CreatedResponse(c, sig)
}

func (h *HubEchoHandler) DrainSignals(c echo.Context) error {
	req := &models.DrainSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals, err := h.hub.DrainSignals(c.Request().Context(), req.Max)
	if err != nil {
		return h.hubErrorResponse(c, "drain signals", err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *HubEchoHandler) ReadSignals(c echo.Context) error {
	req := &models.ReadSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals, err := h.hub.ReadSignals(c.Request().Context(), req.Consumer, req.Max)
	if err != nil {
		return h.hubErrorResponse(c, "read signals", err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *HubEchoHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"redis": h.hub.IsConnected(),
	}
	if !h.hub.IsConnected() {
		return xhttp.DataResponse(c, 503, status)
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *HubEchoHandler) hubErrorResponse(c echo.Context, op string, err error) error {
	h.logger.Error(op+" failed", xlogger.Error(err))

	if errors.Is(err, transport.ErrNotConnected) {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("backing store not connected").WithError(err))
	}
	var te *transport.TransportError
	if errors.As(err, &te) {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("backing store unavailable").WithError(err))
	}
	if hub.IsDegraded(err) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_DEGRADED_WRITE", err.Error(), 500).WithError(err))
	}
	return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
}

func requestTime(unix int64) time.Time {
	if unix > 0 {
		return time.Unix(unix, 0).UTC()
	}
	return time.Now().UTC()
}
