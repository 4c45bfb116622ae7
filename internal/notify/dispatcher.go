package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
)

// DeviceSource is the audience-selection surface the dispatcher needs from
// the device store.
type DeviceSource interface {
	DevicesForPreference(ctx context.Context, pref string) ([]model.Device, error)
	DevicesForIPOEvent(ctx context.Context, pref, alertCol string, ipoID int64) ([]model.Device, error)
	DevicesWithTokens(ctx context.Context) ([]model.Device, error)
	ClearFCMToken(ctx context.Context, token string) (int64, error)
	ClearExpoToken(ctx context.Context, token string) (int64, error)
}

// Dispatcher turns registry events into per-device pushes. Audience selection
// follows the device preference columns; token routing picks FCM when the
// device has a raw token and falls back to Expo.
type Dispatcher struct {
	devices DeviceSource
	fcm     Sender
	expo    Sender
	delay   time.Duration
	logger  *slog.Logger
}

func NewDispatcher(devices DeviceSource, fcm, expo Sender, delay time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		devices: devices,
		fcm:     fcm,
		expo:    expo,
		delay:   delay,
		logger:  logger,
	}
}

// Dispatch sends the pushes one event calls for and returns how many were
// delivered. Send failures are logged, never propagated; one bad token must
// not stall the event loop.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.Event) int {
	switch ev.Type {
	case model.EventIPOCreated:
		if ev.IPO == nil {
			return 0
		}
		return d.sendFiltered(ctx, "notify_new_ipo", NewIPOMessage(ev.IPO))

	case model.EventStatusChange:
		if ev.IPO == nil {
			return 0
		}
		switch ev.NewStatus {
		case model.StatusInDistribution:
			return d.sendFiltered(ctx, "notify_subscription_start", SubscriptionStartMessage(ev.IPO))
		case model.StatusTrading:
			return d.sendFiltered(ctx, "notify_first_trading_day", FirstTradingDayMessage(ev.IPO))
		}
		// awaiting_trading is an internal move; nobody gets pushed.
		return 0

	case model.EventAllocationAnnounced:
		if ev.IPO == nil {
			return 0
		}
		return d.sendForIPO(ctx, "notify_result", "notify_result", ev.IPO.ID, AllocationResultMessage(ev.IPO))

	case model.EventCeilingBroken:
		if ev.IPO == nil {
			return 0
		}
		return d.sendForIPO(ctx, "notify_ceiling_break", "notify_ceiling", ev.IPO.ID, CeilingBrokenMessage(ev.IPO))

	case model.EventNewsMatched:
		if ev.News == nil {
			return 0
		}
		devices, err := d.devices.DevicesWithTokens(ctx)
		if err != nil {
			d.logger.Error("select news audience", "error", err)
			return 0
		}
		return d.sendAll(ctx, devices, NewsMessage(ev.News))
	}

	return 0
}

// SendLastDayWarning pushes the eve-of-last-day warning for one offering.
func (d *Dispatcher) SendLastDayWarning(ctx context.Context, ipo model.IPOSummary) int {
	return d.sendForIPO(ctx, "notify_last_day", "notify_last_day", ipo.ID, LastDayWarningMessage(&ipo))
}

// SendReminder pushes the countdown reminder for one window on the last
// subscription day.
func (d *Dispatcher) SendReminder(ctx context.Context, ipo model.IPOSummary, window time.Duration) int {
	col, ok := reminderColumn(window)
	if !ok {
		d.logger.Warn("no reminder column for window", "window", window)
		return 0
	}
	devices, err := d.devices.DevicesForPreference(ctx, col)
	if err != nil {
		d.logger.Error("select reminder audience", "window", window, "error", err)
		return 0
	}
	return d.sendAll(ctx, devices, ReminderMessage(&ipo, window))
}

func reminderColumn(window time.Duration) (string, bool) {
	switch window {
	case 30 * time.Minute:
		return "remind_30min", true
	case time.Hour:
		return "remind_1h", true
	case 2 * time.Hour:
		return "remind_2h", true
	case 4 * time.Hour:
		return "remind_4h", true
	}
	return "", false
}

func (d *Dispatcher) sendFiltered(ctx context.Context, pref string, n *Notification) int {
	devices, err := d.devices.DevicesForPreference(ctx, pref)
	if err != nil {
		d.logger.Error("select audience", "pref", pref, "error", err)
		return 0
	}
	return d.sendAll(ctx, devices, n)
}

func (d *Dispatcher) sendForIPO(ctx context.Context, pref, alertCol string, ipoID int64, n *Notification) int {
	devices, err := d.devices.DevicesForIPOEvent(ctx, pref, alertCol, ipoID)
	if err != nil {
		d.logger.Error("select audience", "pref", pref, "ipo_id", ipoID, "error", err)
		return 0
	}
	return d.sendAll(ctx, devices, n)
}

// sendAll delivers to each device in turn with the configured pause between
// sends, so a large audience does not burst through the push services.
func (d *Dispatcher) sendAll(ctx context.Context, devices []model.Device, n *Notification) int {
	sent := 0
	for i, dev := range devices {
		if i > 0 && d.delay > 0 {
			select {
			case <-ctx.Done():
				d.logger.Warn("push run cancelled", "sent", sent, "total", len(devices))
				return sent
			case <-time.After(d.delay):
			}
		}
		if d.sendOne(ctx, dev, n) {
			sent++
		}
	}
	if sent > 0 {
		d.logger.Info("push sent", "title", n.Title, "devices", sent)
	}
	return sent
}

func (d *Dispatcher) sendOne(ctx context.Context, dev model.Device, n *Notification) bool {
	switch {
	case dev.FCMToken != "":
		err := d.fcm.Send(ctx, dev.FCMToken, n)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrStaleToken) {
			d.clearFCM(ctx, dev.FCMToken)
		} else {
			d.logger.Warn("fcm push failed", "device_key", dev.DeviceKey, "error", err)
		}
		return false

	case IsExpoToken(dev.ExpoToken):
		err := d.expo.Send(ctx, dev.ExpoToken, n)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrStaleToken) {
			d.clearExpo(ctx, dev.ExpoToken)
		} else {
			d.logger.Warn("expo push failed", "device_key", dev.DeviceKey, "error", err)
		}
		return false
	}

	d.logger.Debug("device has no usable token", "device_key", dev.DeviceKey)
	return false
}

func (d *Dispatcher) clearFCM(ctx context.Context, token string) {
	n, err := d.devices.ClearFCMToken(ctx, token)
	if err != nil {
		d.logger.Error("clear stale fcm token", "error", err)
		return
	}
	d.logger.Warn("cleared stale fcm token", "token", shortToken(token), "devices", n)
}

func (d *Dispatcher) clearExpo(ctx context.Context, token string) {
	n, err := d.devices.ClearExpoToken(ctx, token)
	if err != nil {
		d.logger.Error("clear stale expo token", "error", err)
		return
	}
	d.logger.Warn("cleared stale expo token", "token", shortToken(token), "devices", n)
}
