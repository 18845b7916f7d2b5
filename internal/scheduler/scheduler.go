package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/pvops/cams-pipeline/internal/pipeline"
)

// Scheduler periodically runs the processing pipeline, one pass per tick.
// Each pass consumes at most one pending chunk file, so the folder queue
// drains one file per interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    *pipeline.Runner
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, runner *pipeline.Runner) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
	}
}

// Start schedules the periodic pass and starts the underlying scheduler.
// Passes never overlap; a pass still running when the next tick arrives
// suppresses that tick.
func (s *Scheduler) Start() error {
	minutes := intervalMinutes(s.interval)
	if time.Duration(minutes)*time.Minute != s.interval {
		log.Printf("scheduler: interval %s coerced to %d minutes", s.interval, minutes)
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		log.Println("scheduler: running pipeline pass")

		report, err := s.runner.Run(context.Background())
		switch {
		case err != nil:
			log.Printf("scheduler: pipeline pass %s failed: %v", report.ID, err)
		case report.Skipped:
			log.Println("scheduler: nothing to process")
		default:
			log.Printf("scheduler: pipeline pass %s completed (%d rows)", report.ID, report.Rows)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// intervalMinutes converts the configured interval to whole minutes, the
// granularity the tick runs at. Sub-minute intervals truncate to zero and
// fall back to a 15-minute default.
func intervalMinutes(interval time.Duration) int {
	minutes := int(interval.Minutes())
	if minutes <= 0 {
		return 15
	}
	return minutes
}

// Stop stops the scheduler and cancels any future passes.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
