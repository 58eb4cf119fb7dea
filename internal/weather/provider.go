package weather

import (
	"context"
	"time"
)

// Provider abstracts the forecast source. Fetch performs one request and
// returns the raw response body.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Recorder receives measurements from the Service. See internal/metrics.
type Recorder interface {
	ObserveRequest(provider, outcome string, elapsed time.Duration)
	ObserveTransform(stats TransformStats, rows int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveRequest(string, string, time.Duration) {}

func (noopRecorder) ObserveTransform(TransformStats, int) {}
