package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/metrics"
)

// Notifier delivers a message on behalf of a channel name (e.g.
// "telegram") to target, which is either a specific paired chat id or
// TargetAll to broadcast to every paired chat (ReachSchedule fires always
// pass TargetAll, since a ReachSchedule has no per-chat target of its
// own; NotificationEntry fires pass their own Target). Returns false (not
// an error) if there was nobody to deliver to — matching the original's
// "fired but no delivery" warning path.
type Notifier interface {
	Notify(ctx context.Context, channel, target, message string) (delivered bool, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, channel, target, message string) (bool, error)

func (f NotifierFunc) Notify(ctx context.Context, channel, target, message string) (bool, error) {
	return f(ctx, channel, target, message)
}

// Scheduler polls the reach-schedule and notification stores once a
// minute (spec §4.8) and delivers due entries via Notifier, removing
// one-shot entries and advancing daily entries' next_run once fired.
type Scheduler struct {
	Store             *Store
	NotificationStore *NotificationStore
	Notifier          Notifier
	Logger            *slog.Logger
	Interval          time.Duration
}

// New creates a Scheduler polling every minute, matching the cadence of
// the original's cron-driven `reach-fire` invocation.
func New(store *Store, notificationStore *NotificationStore, notifier Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{Store: store, NotificationStore: notificationStore, Notifier: notifier, Logger: logger, Interval: time.Minute}
}

// FireDue checks both stores for due entries at now, delivers each via
// Notifier, and updates the stores accordingly (spec §4.8 steps 1-4).
// Returns the fired reach schedules and notification entries.
func (s *Scheduler) FireDue(ctx context.Context, now time.Time) ([]Schedule, []NotificationEntry, error) {
	metrics.SchedulerTicks.Inc()

	fired, err := s.fireReachSchedules(ctx, now)
	if err != nil {
		return nil, nil, err
	}
	firedNotifications, err := s.fireNotifications(ctx, now)
	if err != nil {
		return fired, nil, err
	}
	return fired, firedNotifications, nil
}

func (s *Scheduler) fireReachSchedules(ctx context.Context, now time.Time) ([]Schedule, error) {
	schedules, err := s.Store.List()
	if err != nil {
		return nil, err
	}

	due := DueSchedules(schedules, now)
	var fired []Schedule
	for _, sched := range due {
		message := strings.TrimSpace(sched.Message)
		if message == "" {
			continue
		}
		delivered, err := s.Notifier.Notify(ctx, sched.Channel, TargetAll, message)
		if err != nil {
			s.Logger.Error("reach send failed", "id", sched.ID, "channel", sched.Channel, "error", err)
			continue
		}
		if !delivered {
			s.Logger.Warn("reach fired but no delivery", "id", sched.ID, "channel", sched.Channel)
			continue
		}
		s.Logger.Info("reach fired", "id", sched.ID, "channel", sched.Channel)
		metrics.SchedulesFired.Inc()
		fired = append(fired, sched)
	}

	for _, sched := range fired {
		if sched.OnceAt != "" {
			if _, err := s.Store.Remove(sched.ID); err != nil {
				s.Logger.Error("failed to remove fired one-shot", "id", sched.ID, "error", err)
				continue
			}
			s.Logger.Info("reach one-shot removed", "id", sched.ID)
		}
	}
	return fired, nil
}

// fireNotifications materializes any missing next_run on daily entries,
// delivers due entries to their own Target, removes fired one-shots, and
// advances fired dailies' next_run (spec §4.8 steps 1-4, §3 "daily
// entries always materialize next_run on first observation"). Entries
// that are neither due nor newly materialized are left untouched.
func (s *Scheduler) fireNotifications(ctx context.Context, now time.Time) ([]NotificationEntry, error) {
	if s.NotificationStore == nil {
		return nil, nil
	}

	entries, err := s.NotificationStore.List()
	if err != nil {
		return nil, err
	}

	changed := false
	for i := range entries {
		if entries[i].materializeNextRun(now) {
			changed = true
		}
	}

	due := DueNotifications(entries, now)
	var fired []NotificationEntry
	firedIDs := make(map[string]bool, len(due))
	for _, entry := range due {
		message := strings.TrimSpace(entry.Message)
		if message == "" {
			continue
		}
		delivered, err := s.Notifier.Notify(ctx, "telegram", entry.Target, message)
		if err != nil {
			s.Logger.Error("notification send failed", "id", entry.ID, "target", entry.Target, "error", err)
			continue
		}
		if !delivered {
			s.Logger.Warn("notification fired but no delivery", "id", entry.ID, "target", entry.Target)
			continue
		}
		s.Logger.Info("notification fired", "id", entry.ID, "target", entry.Target)
		metrics.SchedulesFired.Inc()
		fired = append(fired, entry)
		firedIDs[entry.ID] = true
	}

	kept := entries[:0]
	for i := range entries {
		e := entries[i]
		if firedIDs[e.ID] {
			switch e.ScheduleType {
			case ScheduleTypeOnce:
				changed = true
				continue // removed after firing
			case ScheduleTypeDaily:
				e.advanceDaily(now)
				changed = true
			}
		}
		kept = append(kept, e)
	}

	if changed {
		if err := s.NotificationStore.Replace(kept); err != nil {
			return fired, err
		}
	}
	return fired, nil
}

// Run polls FireDue every Interval until ctx is cancelled, for the
// in-process Telegram-bot-driven scheduling path (as opposed to an
// external cron calling a one-shot `reach-fire` command).
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if _, _, err := s.FireDue(ctx, t); err != nil {
				s.Logger.Error("fire-due check failed", "error", err)
			}
		}
	}
}
