package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"accountsvc/internal/tasks"
)

// Publisher is satisfied by queue.Producer.
type Publisher interface {
	Publish(ctx context.Context, values map[string]any) (string, error)
}

const publishTimeout = 5 * time.Second

type Scheduler struct {
	cron          *cron.Cron
	queue         Publisher
	purgeSchedule string
	log           zerolog.Logger
}

// NewScheduler takes six-field cron specs (seconds first). A nil queue
// disables scheduling.
func NewScheduler(queue Publisher, purgeSchedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		queue:         queue,
		purgeSchedule: purgeSchedule,
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		s.log.Warn().Msg("no task queue configured, maintenance scheduling disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.purgeSchedule, s.enqueuePurge); err != nil {
		return fmt.Errorf("schedule reset token purge %q: %w", s.purgeSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron and returns a context that is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) enqueuePurge() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	id, err := s.queue.Publish(ctx, tasks.NewPurgeResetTokens(time.Now()))
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue reset token purge failed")
		return
	}
	s.log.Debug().Str("message_id", id).Msg("reset token purge enqueued")
}
