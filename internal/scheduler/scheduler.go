package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"weather-pipeline/internal/metrics"
	"weather-pipeline/internal/weather"
)

// Collector runs the ingestion pipeline for a single city.
type Collector interface {
	Collect(ctx context.Context, city string) error
}

// Cleaner removes records older than the retention window.
type Cleaner interface {
	Cleanup(ctx context.Context, daysToKeep int) (int64, error)
}

// cityTimeout bounds one city's fetch-and-store, including the
// ingestor's retry budget.
const cityTimeout = 30 * time.Second

// Scheduler drives the pipeline on a fixed cadence across all configured
// cities and runs retention cleanup once a day. Cycles never overlap: an
// overrunning cycle defers the next tick instead of running concurrently.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	collector     Collector
	cleaner       Cleaner
	cities        []string
	interval      time.Duration
	retentionDays int
	log           *zap.SugaredLogger

	stopCtx context.Context
	stop    context.CancelFunc
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, retentionDays int, collector Collector, cleaner Cleaner, log *zap.SugaredLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		collector:     collector,
		cleaner:       cleaner,
		cities:        cities,
		interval:      interval,
		retentionDays: retentionDays,
		log:           log,
		stopCtx:       ctx,
		stop:          cancel,
	}
}

// Start schedules the collection and retention jobs and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	// Retention runs regardless of the city list: old rows still age out
	// when collection is not configured.
	if s.retentionDays > 0 {
		_, err := s.scheduler.Every(24 * time.Hour).SingletonMode().Do(s.runRetention)
		if err != nil {
			return err
		}
	}

	if len(s.cities) == 0 {
		s.log.Warn("scheduler: no cities configured; skipping collection job")
	} else {
		_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
			s.RunCycle(s.stopCtx)
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop requests a cooperative shutdown. A cycle in progress finishes the
// city it is currently ingesting and then exits; no further cities are
// started.
func (s *Scheduler) Stop() {
	s.stop()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunCycle performs one full pass over the configured cities. Each city
// is an isolated unit: any failure is logged and the cycle moves on. The
// stop signal is observed between cities only, never mid-ingestion.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()
	s.log.Infow("cycle started", "cities", len(s.cities))

	authFailures := 0
	collected := 0

	for _, city := range s.cities {
		select {
		case <-ctx.Done():
			s.log.Infow("cycle interrupted by shutdown", "collected", collected)
			return
		default:
		}

		// Deliberately not derived from the stop context: an in-flight
		// city finishes even when shutdown has been requested.
		cityCtx, cancel := context.WithTimeout(context.Background(), cityTimeout)
		err := s.collector.Collect(cityCtx, city)
		cancel()

		if err != nil {
			if errors.Is(err, weather.ErrAuth) {
				authFailures++
			}
			s.log.Errorw("collection failed", "city", city, "error", err)
			continue
		}
		collected++
	}

	// A credential problem hits every city equally. Surface it loudly but
	// keep running to avoid crash-looping.
	if authFailures > 0 && authFailures == len(s.cities) {
		s.log.Errorw("provider rejected the API credential for every city; check OPENWEATHER_API_KEY",
			"cities", len(s.cities))
	}

	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	s.log.Infow("cycle completed", "collected", collected, "failed", len(s.cities)-collected,
		"duration", time.Since(start))
}

func (s *Scheduler) runRetention() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.cleaner.Cleanup(ctx, s.retentionDays)
	if err != nil {
		s.log.Errorw("retention cleanup failed", "error", err)
		return
	}
	s.log.Infow("retention cleanup completed", "deleted", deleted, "days_kept", s.retentionDays)
}
