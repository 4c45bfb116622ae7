package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kyaraz/halkaarz/internal/scrape"
)

// Subscription books close at 17:00 Istanbul time on the last day.
const subscriptionCloseHour = 17

// warningHours are the two daily slots the eve-of-close warning goes out in.
var warningHours = []int{9, 17}

// reminderWindows are the lead times a device can opt into, longest first.
var reminderWindows = []struct {
	lead time.Duration
	name string
}{
	{4 * time.Hour, "4h"},
	{2 * time.Hour, "2h"},
	{time.Hour, "1h"},
	{30 * time.Minute, "30min"},
}

func (s *Scheduler) runReminders(ctx context.Context) error {
	now := time.Now().In(scrape.Istanbul)
	return errors.Join(
		s.sendCloseReminders(ctx, now),
		s.sendEveWarnings(ctx, now),
	)
}

// sendCloseReminders pushes opt-in lead-time reminders for offerings whose
// book closes today. Each window is a band one poll interval wide centred
// on its lead time, so exactly one scheduled run lands in it; the state
// marker keeps manual runs from doubling a send.
func (s *Scheduler) sendCloseReminders(ctx context.Context, now time.Time) error {
	ipos, err := s.deps.IPOs.LastDayIPOs(ctx, now)
	if err != nil {
		return fmt.Errorf("close reminders: %w", err)
	}
	if len(ipos) == 0 {
		return nil
	}

	closeAt := time.Date(now.Year(), now.Month(), now.Day(), subscriptionCloseHour, 0, 0, 0, scrape.Istanbul)
	remaining := closeAt.Sub(now)
	if remaining <= 0 {
		return nil
	}

	half := s.cfg.ReminderInterval / 2
	for _, ipo := range ipos {
		for _, w := range reminderWindows {
			if remaining < w.lead-half || remaining >= w.lead+half {
				continue
			}
			key := reminderKey(ipo.ID, now, w.name)
			if s.alreadySent(ctx, key) {
				break
			}
			sent := s.deps.Notifier.SendReminder(ctx, ipo, w.lead)
			s.markSent(ctx, key, now)
			s.logger.Info("close reminder sent",
				"ipo_id", ipo.ID, "window", w.name, "devices", sent)
			break
		}
	}
	return nil
}

// sendEveWarnings pushes the "last day is tomorrow" warning, morning and
// late afternoon, for offerings whose book closes the next day.
func (s *Scheduler) sendEveWarnings(ctx context.Context, now time.Time) error {
	slot := -1
	for _, h := range warningHours {
		if now.Hour() == h {
			slot = h
		}
	}
	if slot < 0 {
		return nil
	}

	ipos, err := s.deps.IPOs.LastDayIPOs(ctx, now.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("eve warnings: %w", err)
	}
	for _, ipo := range ipos {
		key := warningKey(ipo.ID, now, slot)
		if s.alreadySent(ctx, key) {
			continue
		}
		sent := s.deps.Notifier.SendLastDayWarning(ctx, ipo)
		s.markSent(ctx, key, now)
		s.logger.Info("last day warning sent",
			"ipo_id", ipo.ID, "slot", slot, "devices", sent)
	}
	return nil
}

func reminderKey(ipoID int64, day time.Time, window string) string {
	return fmt.Sprintf("reminder:%d:%s:%s", ipoID, day.Format("2006-01-02"), window)
}

func warningKey(ipoID int64, day time.Time, hour int) string {
	return fmt.Sprintf("lastday:%d:%s:%02d", ipoID, day.Format("2006-01-02"), hour)
}

// alreadySent checks a send marker. A read failure reads as unsent.
func (s *Scheduler) alreadySent(ctx context.Context, key string) bool {
	_, ok, err := s.deps.State.Get(ctx, key)
	if err != nil {
		s.logger.Warn("send marker read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *Scheduler) markSent(ctx context.Context, key string, at time.Time) {
	if err := s.deps.State.Set(ctx, key, at.Format(time.RFC3339)); err != nil {
		s.logger.Warn("send marker write failed", "key", key, "error", err)
	}
}
