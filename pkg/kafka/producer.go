package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// Producer publishes JSON payloads to Kafka. With the hash balancer enabled
// all messages for one key land on the same partition, which keeps per-symbol
// signal ordering intact.
type Producer struct {
	writer *kafka.Writer
	comp   string
}

// NewProducer creates a producer from options. Brokers are mandatory.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1048576,
		BatchTimeout: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	bal := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}

	registerProducerMetrics()
	return &Producer{writer: writer, comp: cfg.Compression}, nil
}

// Publish sends one message to topic. Non-string values are JSON encoded.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	start := time.Now()

	var v []byte
	switch val := value.(type) {
	case []byte:
		v = val
	case string:
		v = []byte(val)
	default:
		var err error
		v, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: v,
		Time:  time.Now(),
	})
	observePublish(topic, p.comp, int64(len(v)), time.Since(start), err)
	return err
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}

var (
	producerMetricsOnce sync.Once
	publishTotal        *prometheus.CounterVec
	publishErrors       *prometheus.CounterVec
	publishBytes        *prometheus.CounterVec
	publishLatency      *prometheus.HistogramVec
)

func registerProducerMetrics() {
	producerMetricsOnce.Do(func() {
		publishTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_kafka_producer_messages_total",
				Help: "Messages published to Kafka",
			},
			[]string{"topic", "compression", "result"},
		)
		publishErrors = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_kafka_producer_errors_total",
				Help: "Kafka publish errors",
			},
			[]string{"topic"},
		)
		publishBytes = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_kafka_producer_bytes_total",
				Help: "Payload bytes published to Kafka",
			},
			[]string{"topic", "compression"},
		)
		publishLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_kafka_producer_publish_seconds",
				Help:    "Kafka publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
	})
}

func observePublish(topic, comp string, bytes int64, dur time.Duration, err error) {
	if publishTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		publishErrors.WithLabelValues(topic).Inc()
	}
	publishTotal.WithLabelValues(topic, comp, result).Inc()
	publishBytes.WithLabelValues(topic, comp).Add(float64(bytes))
	publishLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
