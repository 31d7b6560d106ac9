package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"legal-reader/internal/logger"
)

// Scheduler runs periodic housekeeping jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s}
}

func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// ScheduleInterval runs job every duration. Errors from job are logged.
func (s *Scheduler) ScheduleInterval(tag string, duration time.Duration, job func() error) error {
	_, err := s.scheduler.Every(duration).Tag(tag).Do(func() {
		if err := job(); err != nil {
			logger.Warn("Scheduled job failed", "tag", tag, "error", err)
		}
	})
	return err
}

// RemoveJob removes a scheduled job by tag
func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

func (s *Scheduler) Len() int {
	return len(s.scheduler.Jobs())
}
