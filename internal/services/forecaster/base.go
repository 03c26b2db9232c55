package forecaster

import (
	"context"
	"fmt"
	"time"

	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
)

// httpServiceBase centralizes client construction and JSON POST handling for
// the model-service client.
type httpServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

func newHTTPServiceBase(cfg *config.Config) *httpServiceBase {
	timeout := cfg.Forecaster.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &httpServiceBase{
		baseURL: cfg.Forecaster.ServiceURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// postJSON posts the given payload to path under baseURL and decodes JSON
// into dest.
func (b *httpServiceBase) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("forecaster http client not initialized")
	}
	if err := b.client.PostJSON(ctx, b.baseURL+path, payload, dest); err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// postJSONWithRetry retries transient failures with linear backoff. Fit calls
// are never retried; replaying a training request is not idempotent.
func (b *httpServiceBase) postJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.postJSON(ctx, path, payload, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.postJSON(ctx, path, payload, dest)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
