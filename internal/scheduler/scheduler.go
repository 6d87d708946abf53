package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/crop-yield-prediction/internal/yield"
)

// probeTimeout bounds a single round of availability probes.
const probeTimeout = 30 * time.Second

// Prober is the part of yield.Service the scheduler drives.
type Prober interface {
	Probe(ctx context.Context) []yield.ProbeResult
}

// Scheduler periodically probes the remote predictors.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Prober
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, service Prober) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running predictor probe job")

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	results := s.service.Probe(ctx)
	available := 0
	for _, r := range results {
		if r.Available {
			available++
		}
	}
	log.Printf("scheduler: completed predictor probe job (%d/%d available)", available, len(results))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
