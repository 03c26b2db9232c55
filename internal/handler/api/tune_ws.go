package api

import (
	"context"
	"math"
	"net/http"
	"time"

	models "StockCast/internal/domain/models"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Progress streaming is same-origin-agnostic; auth sits in front of us.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// progressFrame is one tuning-progress update pushed to the client.
type progressFrame struct {
	Type      string  `json:"type"`
	Completed int     `json:"completed,omitempty"`
	Total     int     `json:"total,omitempty"`
	BestMAPE  float64 `json:"best_mape,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type resultFrame struct {
	Type     string        `json:"type"`
	Symbol   string        `json:"symbol"`
	Best     interface{}   `json:"best,omitempty"`
	Artifact *artifactInfo `json:"artifact,omitempty"`
}

// TuneProgress upgrades to a websocket, runs the grid search and streams a
// frame after every trial. Closing the socket cancels the search between
// trials.
func (h *ForecastHandler) TuneProgress(c echo.Context) error {
	req := &models.TuneRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.limiter.Allow(req.Symbol) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("tuning already requested for this symbol recently"))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The request context does not cancel once the connection is hijacked,
	// so watch the socket ourselves: a read error means the client is gone.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(v interface{}) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(v); err != nil {
			h.logger.Warn("tune ws write failed", xlogger.Error(err))
			return false
		}
		return true
	}

	report, artifact, err := h.pipeline.TuneAndTrain(ctx, req.Symbol, req.N, func(completed, total int, bestMAPE float64) {
		// bestMAPE is NaN until the first successful trial, which JSON
		// cannot carry; the zero value is dropped by omitempty instead.
		if math.IsNaN(bestMAPE) {
			bestMAPE = 0
		}
		send(progressFrame{Type: "progress", Completed: completed, Total: total, BestMAPE: bestMAPE})
	})
	if err != nil {
		send(progressFrame{Type: "error", Error: err.Error()})
		return nil
	}

	var best interface{}
	if report.BestFound {
		best = report.Best
	}
	send(resultFrame{Type: "result", Symbol: report.Symbol, Best: best, Artifact: artifactSummary(artifact)})

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	return nil
}
