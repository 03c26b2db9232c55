package repository

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
)

// KafkaSignalPublisher hands trading signals to downstream consumers over a
// Kafka topic, keyed by symbol so one instrument's signals stay ordered.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic, l: l}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, signal models.TradingSignal) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(signal.Symbol), signal); err != nil {
		return fmt.Errorf("publish signal for %s: %w", signal.Symbol, err)
	}
	if p.l != nil {
		p.l.Debug("signal published",
			applogger.String("topic", p.topic),
			applogger.String("symbol", signal.Symbol),
			applogger.String("action", string(signal.Action)),
		)
	}
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

// NopSignalPublisher is used when Kafka is disabled; signals are only logged.
type NopSignalPublisher struct {
	l *applogger.Logger
}

func NewNopSignalPublisher(l *applogger.Logger) *NopSignalPublisher {
	return &NopSignalPublisher{l: l}
}

func (p *NopSignalPublisher) PublishSignal(ctx context.Context, signal models.TradingSignal) error {
	if p.l != nil {
		p.l.Info("signal generated",
			applogger.String("symbol", signal.Symbol),
			applogger.String("action", string(signal.Action)),
			applogger.Float64("delta", signal.Delta),
			applogger.Float64("confidence", signal.Confidence),
		)
	}
	return nil
}

func (p *NopSignalPublisher) Close() error { return nil }
