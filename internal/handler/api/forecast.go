package api

import (
	"errors"
	"net/http"
	"time"

	models "StockCast/internal/domain/models"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/queue"

	"github.com/labstack/echo/v4"
)

// Tuning is expensive, so each symbol gets a small token bucket: a burst of
// two runs, then one fresh token every 30 seconds.
const (
	tuneBurst     = 2.0
	tuneRefillPer = 1.0 / 30.0
)

// ForecastHandler exposes the prediction pipeline over Echo.
type ForecastHandler struct {
	logger    *xlogger.Logger
	pipeline  *usecase.Pipeline
	predictor *usecase.Predictor
	tuneQueue queue.QueueService
	limiter   *ratelimit.Limiter
	health    func(c echo.Context) error
}

// NewForecastHandler builds the API surface. tuneQueue may be nil when no
// background queue is configured; the async tune endpoint then returns 503.
func NewForecastHandler(logger *xlogger.Logger, pipeline *usecase.Pipeline, predictor *usecase.Predictor, tuneQueue queue.QueueService) *ForecastHandler {
	return &ForecastHandler{
		logger:    logger,
		pipeline:  pipeline,
		predictor: predictor,
		tuneQueue: tuneQueue,
		limiter:   ratelimit.New(tuneBurst, tuneRefillPer),
	}
}

// SetHealthCheck installs the infrastructure health handler for /healthz.
func (h *ForecastHandler) SetHealthCheck(fn func(c echo.Context) error) { h.health = fn }

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predict", h.Predict)
	g.GET("/signal", h.Signal)
	g.POST("/tune", h.Tune)
	g.POST("/tune/async", h.TuneAsync)
	g.GET("/tune/ws", h.TuneProgress)
	e.GET("/healthz", h.Healthz)
}

func (h *ForecastHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predictor.Predict(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pred, err := h.predictor.Predict(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		h.logger.Error("signal usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, h.predictor.GenerateSignal(pred))
}

// Tune runs a full synchronous grid search and retrain for one symbol.
// Long running; clients wanting live progress should use /api/tune/ws.
func (h *ForecastHandler) Tune(c echo.Context) error {
	req := &models.TuneRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.limiter.Allow(req.Symbol) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("tuning already requested for this symbol recently"))
	}

	report, artifact, err := h.pipeline.TuneAndTrain(c.Request().Context(), req.Symbol, req.N, nil)
	if err != nil {
		h.logger.Error("tune usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, tuneResponse{Report: report, Artifact: artifactSummary(artifact)})
}

// TuneAsync enqueues a background retrain instead of blocking the request.
func (h *ForecastHandler) TuneAsync(c echo.Context) error {
	req := &models.TuneRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.tuneQueue == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_QUEUE_DISABLED", "", "background tuning requires the redis cache backend", http.StatusServiceUnavailable))
	}
	if !h.limiter.Allow(req.Symbol) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("tuning already requested for this symbol recently"))
	}

	payload := usecase.RetrainPayload{Symbol: req.Symbol, Observations: req.N}
	if err := h.tuneQueue.PublishMessage(c.Request().Context(), usecase.RetrainMessageType, payload); err != nil {
		h.logger.Error("tune enqueue error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"symbol": req.Symbol, "status": "queued"})
}

func (h *ForecastHandler) Healthz(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type tuneResponse struct {
	Report   usecase.TuneReport `json:"report"`
	Artifact *artifactInfo      `json:"artifact,omitempty"`
}

// artifactInfo is the externally visible slice of a persisted model; the
// opaque state and scaler stay internal.
type artifactInfo struct {
	Symbol         string                      `json:"symbol"`
	Version        int                         `json:"version"`
	TrainedAt      string                      `json:"trained_at"`
	DataPoints     int                         `json:"data_points"`
	ValidationLoss float64                     `json:"validation_loss"`
	MAE            float64                     `json:"mae"`
	Config         models.HyperparameterConfig `json:"config"`
}

func artifactSummary(a *models.ModelArtifact) *artifactInfo {
	if a == nil {
		return nil
	}
	return &artifactInfo{
		Symbol:         a.Symbol,
		Version:        a.Version,
		TrainedAt:      a.TrainedAt.Format(time.RFC3339),
		DataPoints:     a.DataPoints,
		ValidationLoss: a.ValidationLoss,
		MAE:            a.MAE,
		Config:         a.Config,
	}
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, models.ErrModelNotFound):
		return xhttp.NotFoundError("no trained model for this symbol, run tuning first").WithError(err)
	case models.IsInsufficientData(err):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrSeriesGap):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	default:
		return err
	}
}
