package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-measurements/internal/metrics"
	"github.com/i474232898/weather-measurements/internal/weather"
)

// Options controls which background jobs are scheduled.
type Options struct {
	// Ingest enables the provider fetch job for Station.
	Ingest         bool
	Station        weather.Station
	IngestInterval time.Duration
	// FetchTimeout bounds a single ingest run.
	FetchTimeout time.Duration

	// MaxAge of stored measurements; 0 disables the retention job.
	MaxAge            time.Duration
	RetentionInterval time.Duration
}

// Scheduler runs periodic ingestion and retention against the service.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	opts      Options
	log       logrus.FieldLogger
}

// New creates a new Scheduler.
func New(service *weather.Service, opts Options, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.IngestInterval <= 0 {
		opts.IngestInterval = 15 * time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.RetentionInterval <= 0 {
		opts.RetentionInterval = time.Hour
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		opts:      opts,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules the enabled jobs and starts the underlying scheduler.
// It is a no-op when no job is enabled.
func (s *Scheduler) Start() error {
	if s.opts.Ingest {
		if _, err := s.scheduler.Every(s.opts.IngestInterval).Do(s.ingest); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"station":  s.opts.Station.Key(),
			"interval": s.opts.IngestInterval.String(),
		}).Info("ingest job scheduled")
	}

	if s.opts.MaxAge > 0 {
		if _, err := s.scheduler.Every(s.opts.RetentionInterval).Do(s.prune); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"max_age":  s.opts.MaxAge.String(),
			"interval": s.opts.RetentionInterval.String(),
		}).Info("retention job scheduled")
	}

	if s.scheduler.Len() == 0 {
		s.log.Info("no background jobs enabled")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) ingest() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.FetchTimeout)
	defer cancel()

	s.log.Debug("running weather fetch job")
	if err := s.service.FetchAndStore(ctx, s.opts.Station); err != nil {
		s.log.WithError(err).Error("weather fetch job failed")
	}
}

func (s *Scheduler) prune() {
	n := s.service.PruneOlderThan(s.opts.MaxAge)
	metrics.RetentionPrunedTotal.Add(float64(n))
	if n > 0 {
		s.log.WithField("removed", n).Info("pruned expired measurements")
	}
}
