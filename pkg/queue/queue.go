package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QueueService is the producer side of the queue, the only surface
// API handlers need.
type QueueService interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// QueueConfig tunes the consumer side.
type QueueConfig struct {
	Workers    int
	RetryLimit int
	RetryDelay time.Duration
}

// Message is the envelope stored in redis for every enqueued payload.
type Message struct {
	ID        string
	Type      string
	Payload   interface{}
	Attempts  int
	Timestamp time.Time
}

// ParsePayload recovers a typed payload from the loosely typed value a
// job receives. Payloads round-trip through JSON, so jobs usually see
// json.RawMessage or a decoded map rather than the original struct.
func ParsePayload[T any](payload interface{}) (*T, error) {
	var result T

	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return &result, nil
	case map[string]interface{}:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal payload map: %w", err)
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payload map: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}
}
