package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/hourly-forecast/internal/weather"
)

// probeTimeout bounds a single reachability check.
const probeTimeout = 30 * time.Second

// Prober checks the forecast source. *weather.Service satisfies it.
type Prober interface {
	Probe(ctx context.Context) weather.ProbeStatus
}

// Scheduler periodically probes the forecast source so /health can report
// upstream reachability. It never stores forecast data.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, prober Prober) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		interval:  interval,
	}
}

// Start schedules the probe job and starts the underlying scheduler. The first
// probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Info("scheduler: probe interval is zero; upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		status := s.prober.Probe(ctx)
		log.WithField("ok", status.OK).Debug("scheduler: upstream probe completed")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
