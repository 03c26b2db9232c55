package usecase

import (
	"context"
	"fmt"

	applogger "StockCast/pkg/logger"
	"StockCast/pkg/queue"
)

// RetrainMessageType identifies background retrain messages on the queue.
const RetrainMessageType = "model.retrain"

// RetrainPayload is the queue message body for a background retrain.
type RetrainPayload struct {
	Symbol       string `json:"symbol"`
	Observations int    `json:"observations,omitempty"`
}

// RetrainJob consumes retrain messages and runs the tune and train flow for
// one symbol. Failures bubble up so the queue can retry or dead-letter.
type RetrainJob struct {
	pipeline *Pipeline
	log      *applogger.Logger
}

var _ queue.Job = (*RetrainJob)(nil)

func NewRetrainJob(pipeline *Pipeline, log *applogger.Logger) *RetrainJob {
	return &RetrainJob{
		pipeline: pipeline,
		log:      log.With("retrain-job"),
	}
}

func (j *RetrainJob) Name() string { return "retrain" }

func (j *RetrainJob) Type() string { return RetrainMessageType }

func (j *RetrainJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[RetrainPayload](payload)
	if err != nil {
		return fmt.Errorf("retrain payload: %w", err)
	}
	if req.Symbol == "" {
		return fmt.Errorf("retrain payload missing symbol")
	}

	report, artifact, err := j.pipeline.TuneAndTrain(ctx, req.Symbol, req.Observations, nil)
	if err != nil {
		return fmt.Errorf("retrain %s: %w", req.Symbol, err)
	}

	j.log.Info("background retrain finished",
		applogger.String("symbol", req.Symbol),
		applogger.Int("trials", len(report.Trials)),
		applogger.Int("version", artifact.Version),
		applogger.Float64("mae", artifact.MAE),
	)
	return nil
}
