// Package scheduler runs the periodic tick that turns recurring templates
// into pending expense reminders.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"pocketwatch/internal/clock"
	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/logger"
	"pocketwatch/internal/models"
	"pocketwatch/internal/services"
)

// TickStats summarizes one pass over the active templates.
type TickStats struct {
	Examined  int64
	Triggered int64
	Skipped   int64
	Failed    int64
}

// Scheduler periodically examines every active template and creates pending
// instances for the ones whose billing period has elapsed. A tick is
// idempotent: decisions are pure functions of stored state, and creation is
// guarded by a conditional write, so overlapping or repeated ticks converge
// on the same outcome.
type Scheduler struct {
	db        *gorm.DB
	reminders services.ReminderServicer
	notifier  Notifier
	clk       clock.Clock
	interval  time.Duration
	workers   int
}

// New creates a Scheduler. workers bounds the number of templates processed
// concurrently within one tick.
func New(db *gorm.DB, reminders services.ReminderServicer, notifier Notifier, clk clock.Clock, interval time.Duration, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		db:        db,
		reminders: reminders,
		notifier:  notifier,
		clk:       clk,
		interval:  interval,
		workers:   workers,
	}
}

// Start runs the tick loop until the context is canceled. The first tick
// runs immediately so a restarted process catches up without waiting a full
// interval.
func (s *Scheduler) Start(ctx context.Context) {
	log := logger.Get()
	log.Infow("scheduler started", "interval", s.interval, "workers", s.workers)

	s.runAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runAndLog(ctx)
		}
	}
}

func (s *Scheduler) runAndLog(ctx context.Context) {
	stats, err := s.RunTick(ctx)
	if err != nil {
		logger.Get().Errorw("tick failed", "error", err)
		return
	}
	logger.Get().Infow("tick complete",
		"examined", stats.Examined,
		"triggered", stats.Triggered,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
}

// RunTick examines every active template once. A failure on one template is
// logged and counted but never aborts the pass; the next tick retries it
// for free because nothing was recorded for it.
func (s *Scheduler) RunTick(ctx context.Context) (TickStats, error) {
	var stats TickStats

	var templates []models.RecurringTemplate
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("is_active = ?", true).
		Find(&templates).Error
	if err != nil {
		return stats, err
	}

	today := s.clk.Today()
	work := make(chan *models.RecurringTemplate)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tpl := range work {
				s.process(tpl, today, &stats)
			}
		}()
	}

	for i := range templates {
		atomic.AddInt64(&stats.Examined, 1)
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return stats, ctx.Err()
		case work <- &templates[i]:
		}
	}
	close(work)
	wg.Wait()

	return stats, nil
}

func (s *Scheduler) process(tpl *models.RecurringTemplate, today time.Time, stats *TickStats) {
	should, trigger := s.reminders.DecideTrigger(tpl, today)
	if !should {
		atomic.AddInt64(&stats.Skipped, 1)
		return
	}

	instance, err := s.reminders.CreatePending(tpl, *trigger)
	if err != nil {
		// Another tick got here first; that outcome is the one we wanted.
		if errors.Is(err, apperrors.ErrAlreadyTriggered) || errors.Is(err, apperrors.ErrPendingExists) {
			atomic.AddInt64(&stats.Skipped, 1)
			return
		}
		atomic.AddInt64(&stats.Failed, 1)
		logger.Get().Errorw("failed to create pending instance",
			"error", err,
			"template_id", tpl.ID,
		)
		return
	}

	if err := s.notifier.Notify(&tpl.User, instance); err != nil {
		// The instance exists either way; the user can still find it in
		// the app even if the message never arrived.
		logger.Get().Errorw("failed to send reminder",
			"error", err,
			"instance_id", instance.ID,
		)
	}

	atomic.AddInt64(&stats.Triggered, 1)
}
