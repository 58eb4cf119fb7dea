package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Service fetches the forecast from its provider and shapes it into the
// hourly table. It keeps no forecast data between calls.
type Service struct {
	provider Provider
	recorder Recorder
	location *time.Location
	now      func() time.Time

	mu        sync.RWMutex
	lastProbe ProbeStatus
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used to start the synthetic hour labels.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeZone sets the zone the wall clock is read in.
func WithTimeZone(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a new Service.
func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		recorder: noopRecorder{},
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HourlyTable fetches the forecast once and returns up to MaxHourlyRows rows.
// Any fatal error is returned as is (wrapped) and no partial table is produced.
func (s *Service) HourlyTable(ctx context.Context) (Table, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("no forecast provider configured")
	}

	started := time.Now()
	table, stats, err := s.fetchAndTransform(ctx)
	outcome := Outcome(err)
	s.recorder.ObserveRequest(s.provider.Name(), outcome, time.Since(started))

	logger := log.WithFields(log.Fields{
		"provider": s.provider.Name(),
		"outcome":  outcome,
	})
	if err != nil {
		logger.Errorf("hourly forecast failed: %v", err)
		return nil, err
	}

	s.recorder.ObserveTransform(stats, len(table))
	logger.WithFields(log.Fields{
		"rows":           len(table),
		"considered":     stats.Considered,
		"skipped":        stats.Skipped,
		"rain_defaulted": stats.RainDefaulted,
	}).Debug("hourly forecast built")

	return table, nil
}

func (s *Service) fetchAndTransform(ctx context.Context) (Table, TransformStats, error) {
	raw, err := s.provider.Fetch(ctx)
	if err != nil {
		return nil, TransformStats{}, fmt.Errorf("fetch forecast: %w", err)
	}

	table, stats, err := Transform(raw, s.now().In(s.location))
	if err != nil {
		return nil, stats, fmt.Errorf("transform forecast: %w", err)
	}
	return table, stats, nil
}

// Probe checks that the provider answers. The body is discarded.
func (s *Service) Probe(ctx context.Context) ProbeStatus {
	status := ProbeStatus{OK: true}
	if s.provider == nil {
		status.OK = false
		status.Error = "no forecast provider configured"
	} else if _, err := s.provider.Fetch(ctx); err != nil {
		status.OK = false
		status.Error = err.Error()
		log.WithField("provider", s.provider.Name()).Warnf("upstream probe failed: %v", err)
	}
	status.CheckedAt = s.now().UTC()

	s.mu.Lock()
	s.lastProbe = status
	s.mu.Unlock()

	return status
}

// LastProbe returns the result of the most recent Probe. CheckedAt is zero if
// no probe has run yet.
func (s *Service) LastProbe() ProbeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastProbe
}
