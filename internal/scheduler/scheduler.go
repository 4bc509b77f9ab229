// Package scheduler contains the recurring billing loop and the two
// actions it drives: debt reminders and enforcement against debtors.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fireWindow is how long past a job's candidate instant it still counts
// as due. It matches the window used when computing the candidate, so a
// job cannot fire twice within one wake cycle.
const fireWindow = time.Minute

// minSleep guards against zero or negative sleep durations from clock
// skew between computing a candidate and sleeping towards it.
const minSleep = time.Second

// Scheduler wakes at each job's daily time and fires the job when its
// day-of-month gate holds. It owns no state beyond the configuration;
// next-due instants are recomputed from the wall clock on every cycle.
type Scheduler struct {
	anchorDay    int
	reminderHour int
	enforceHour  int

	notify  func(context.Context)
	enforce func(context.Context)

	clock func() time.Time
	log   zerolog.Logger
}

// New creates a Scheduler. notify and enforce are invoked synchronously
// from the loop on their due days.
func New(anchorDay, reminderHour, enforceHour int, notify, enforce func(context.Context), logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		anchorDay:    anchorDay,
		reminderHour: reminderHour,
		enforceHour:  enforceHour,
		notify:       notify,
		enforce:      enforce,
		clock:        time.Now,
		log:          logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run loops until ctx is cancelled. Cancellation is the normal way to
// stop the scheduler and yields a nil return, never an error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().Int("anchor_day", s.anchorDay).Msg("scheduler started")

	for {
		now := s.clock()
		todayReminder := at(now, s.reminderHour)
		todayEnforce := at(now, s.enforceHour)

		next := nextAfter(now, todayReminder)
		if enforceNext := nextAfter(now, todayEnforce); enforceNext.Before(next) {
			next = enforceNext
		}

		sleep := next.Sub(now)
		if sleep < minSleep {
			sleep = minSleep
		}
		s.log.Debug().Time("until", next).Dur("sleep", sleep).Msg("scheduler sleeping")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info().Msg("scheduler stopped")
			return nil
		case <-timer.C:
		}

		// Re-read the clock after waking; the gates below decide
		// whether a due job actually fires today.
		now = s.clock()
		cycle := s.log.With().Str("run_id", uuid.NewString()).Logger()

		if within(now, todayReminder) {
			if ReminderDue(now, s.anchorDay) {
				cycle.Info().Msg("day before billing anchor, sending reminders")
				s.notify(ctx)
			} else {
				cycle.Info().Msg("reminder time reached, but not the day before billing")
			}
		}

		if within(now, todayEnforce) {
			if EnforcementDue(now, s.anchorDay) {
				cycle.Info().Msg("three days past billing anchor, running enforcement")
				s.enforce(ctx)
			} else {
				cycle.Info().Msg("enforcement time reached, but not three days past billing")
			}
		}
	}
}

// ReminderDue reports whether now is exactly one calendar day before the
// billing anchor day-of-month. Anchor days 29-31 never match in months
// too short to reach them; that mirrors the billing rules as deployed
// and is deliberately left as is.
func ReminderDue(now time.Time, anchorDay int) bool {
	return now.AddDate(0, 0, 1).Day() == anchorDay
}

// EnforcementDue reports whether now is exactly three calendar days past
// the billing anchor day-of-month. Same short-month caveat as ReminderDue.
func EnforcementDue(now time.Time, anchorDay int) bool {
	return now.AddDate(0, 0, -3).Day() == anchorDay
}

// at returns today's date combined with the given hour.
func at(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
}

// nextAfter advances a candidate one day if now is already past it.
func nextAfter(now, candidate time.Time) time.Time {
	if !now.Before(candidate) {
		return candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// within reports whether now sits inside the fire window right after the
// candidate instant.
func within(now, candidate time.Time) bool {
	return !now.Before(candidate) && now.Before(candidate.Add(fireWindow))
}
