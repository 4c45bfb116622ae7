package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyaraz/halkaarz/internal/model"
)

// DeviceStore persists registered mobile clients, their notification
// preferences and per-offering alerts.
type DeviceStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDeviceStore(pool *pgxpool.Pool, logger *slog.Logger) *DeviceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceStore{pool: pool, logger: logger}
}

const deviceColumns = `id, device_key, fcm_token, expo_token, platform, app_version,
	notifications_enabled, notify_new_ipo, notify_subscription_start, notify_last_day,
	notify_result, notify_ceiling_break, notify_first_trading_day,
	remind_30min, remind_1h, remind_2h, remind_4h, created_at, updated_at`

func scanDevice(row pgx.Row) (*model.Device, error) {
	var d model.Device
	err := row.Scan(
		&d.ID, &d.DeviceKey, &d.FCMToken, &d.ExpoToken, &d.Platform, &d.AppVersion,
		&d.NotificationsEnabled, &d.NotifyNewIPO, &d.NotifySubscriptionStart, &d.NotifyLastDay,
		&d.NotifyResult, &d.NotifyCeilingBreak, &d.NotifyFirstTradingDay,
		&d.Remind30Min, &d.Remind1H, &d.Remind2H, &d.Remind4H, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDevices(rows pgx.Rows) ([]model.Device, error) {
	defer rows.Close()
	var out []model.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// RegisterDevice upserts a client by its device key. New registrations get a
// fresh UUID and default preferences; re-registrations refresh the tokens and
// app info but never touch preferences the user already tuned.
func (s *DeviceStore) RegisterDevice(ctx context.Context, d *model.Device) (*model.Device, bool, error) {
	row := s.pool.QueryRow(ctx, `INSERT INTO devices (id, device_key, fcm_token, expo_token, platform, app_version)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_key) DO UPDATE SET
			fcm_token   = EXCLUDED.fcm_token,
			expo_token  = EXCLUDED.expo_token,
			platform    = CASE WHEN EXCLUDED.platform <> '' THEN EXCLUDED.platform ELSE devices.platform END,
			app_version = CASE WHEN EXCLUDED.app_version <> '' THEN EXCLUDED.app_version ELSE devices.app_version END,
			updated_at  = now()
		RETURNING `+deviceColumns+`, (created_at = updated_at) AS created`,
		uuid.New(), d.DeviceKey, d.FCMToken, d.ExpoToken, d.Platform, d.AppVersion)

	var (
		out     model.Device
		created bool
	)
	err := row.Scan(
		&out.ID, &out.DeviceKey, &out.FCMToken, &out.ExpoToken, &out.Platform, &out.AppVersion,
		&out.NotificationsEnabled, &out.NotifyNewIPO, &out.NotifySubscriptionStart, &out.NotifyLastDay,
		&out.NotifyResult, &out.NotifyCeilingBreak, &out.NotifyFirstTradingDay,
		&out.Remind30Min, &out.Remind1H, &out.Remind2H, &out.Remind4H, &out.CreatedAt, &out.UpdatedAt,
		&created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("register device %q: %w", d.DeviceKey, err)
	}
	if created {
		s.logger.Info("device registered", "device_key", out.DeviceKey, "platform", out.Platform)
	}
	return &out, created, nil
}

// GetDevice looks a client up by its device key.
func (s *DeviceStore) GetDevice(ctx context.Context, deviceKey string) (*model.Device, error) {
	d, err := scanDevice(s.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE device_key = $1`, deviceKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device %q: %w", deviceKey, err)
	}
	return d, nil
}

var deviceUpdateColumns = map[string]bool{
	"fcm_token": true, "expo_token": true, "platform": true, "app_version": true,
	"notifications_enabled": true, "notify_new_ipo": true, "notify_subscription_start": true,
	"notify_last_day": true, "notify_result": true, "notify_ceiling_break": true,
	"notify_first_trading_day": true, "remind_30min": true, "remind_1h": true,
	"remind_2h": true, "remind_4h": true,
}

// UpdateDevice applies a preference patch and returns the updated row.
func (s *DeviceStore) UpdateDevice(ctx context.Context, deviceKey string, fields map[string]any) (*model.Device, error) {
	query, args, err := buildUpdate("devices", "device_key", deviceKey, deviceUpdateColumns, fields)
	if err != nil {
		return nil, err
	}
	d, err := scanDevice(s.pool.QueryRow(ctx, query+" RETURNING "+deviceColumns, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update device %q: %w", deviceKey, err)
	}
	return d, nil
}

// Preference and reminder columns a push audience can be selected by.
var devicePreferenceColumns = map[string]bool{
	"notify_new_ipo": true, "notify_subscription_start": true, "notify_last_day": true,
	"notify_result": true, "notify_ceiling_break": true, "notify_first_trading_day": true,
	"remind_30min": true, "remind_1h": true, "remind_2h": true, "remind_4h": true,
}

// DevicesForPreference returns every pushable client that opted into the
// given preference column. The master switch and a usable token are always
// required.
func (s *DeviceStore) DevicesForPreference(ctx context.Context, pref string) ([]model.Device, error) {
	if !devicePreferenceColumns[pref] {
		return nil, fmt.Errorf("devices for preference: unknown column %q", pref)
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM devices
		 WHERE notifications_enabled AND %s AND (fcm_token <> '' OR expo_token <> '')`,
		deviceColumns, pref))
	if err != nil {
		return nil, fmt.Errorf("devices for preference %s: %w", pref, err)
	}
	out, err := collectDevices(rows)
	if err != nil {
		return nil, fmt.Errorf("devices for preference %s: %w", pref, err)
	}
	return out, nil
}

// Per-offering alert flags, by the event they refine.
var deviceAlertColumns = map[string]bool{
	"notify_last_day": true, "notify_result": true, "notify_ceiling": true,
}

// DevicesForIPOEvent returns the audience for an offering-scoped push: every
// pushable client with the global preference on, plus the ones tracking this
// offering explicitly through an alert row.
func (s *DeviceStore) DevicesForIPOEvent(ctx context.Context, pref, alertCol string, ipoID int64) ([]model.Device, error) {
	if !devicePreferenceColumns[pref] {
		return nil, fmt.Errorf("devices for ipo event: unknown preference %q", pref)
	}
	if !deviceAlertColumns[alertCol] {
		return nil, fmt.Errorf("devices for ipo event: unknown alert column %q", alertCol)
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM devices d
		 LEFT JOIN device_alerts a ON a.device_id = d.id AND a.ipo_id = $1
		 WHERE d.notifications_enabled
		   AND (d.%s OR COALESCE(a.%s, FALSE))
		   AND (d.fcm_token <> '' OR d.expo_token <> '')`,
		prefixColumns(deviceColumns, "d"), pref, alertCol), ipoID)
	if err != nil {
		return nil, fmt.Errorf("devices for ipo event %s: %w", pref, err)
	}
	out, err := collectDevices(rows)
	if err != nil {
		return nil, fmt.Errorf("devices for ipo event %s: %w", pref, err)
	}
	return out, nil
}

// DevicesForReminder returns clients that opted into one of the last-day
// reminder windows (remind_30min, remind_1h, remind_2h, remind_4h).
func (s *DeviceStore) DevicesForReminder(ctx context.Context, window string) ([]model.Device, error) {
	return s.DevicesForPreference(ctx, window)
}

// DevicesWithTokens returns every pushable client regardless of per-event
// preferences, used for news alerts which have no opt-out column yet.
func (s *DeviceStore) DevicesWithTokens(ctx context.Context) ([]model.Device, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+deviceColumns+` FROM devices
		 WHERE notifications_enabled AND (fcm_token <> '' OR expo_token <> '')`)
	if err != nil {
		return nil, fmt.Errorf("devices with tokens: %w", err)
	}
	out, err := collectDevices(rows)
	if err != nil {
		return nil, fmt.Errorf("devices with tokens: %w", err)
	}
	return out, nil
}

// ClearFCMToken drops a token Firebase reported as stale from every device
// carrying it.
func (s *DeviceStore) ClearFCMToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE devices SET fcm_token = '', updated_at = now() WHERE fcm_token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("clear fcm token: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ClearExpoToken drops a token Expo reported as unregistered.
func (s *DeviceStore) ClearExpoToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE devices SET expo_token = '', updated_at = now() WHERE expo_token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("clear expo token: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertAlert creates or updates a per-offering alert.
func (s *DeviceStore) UpsertAlert(ctx context.Context, a model.DeviceAlert) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO device_alerts (device_id, ipo_id, notify_last_day, notify_result, notify_ceiling)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (device_id, ipo_id) DO UPDATE SET
			notify_last_day = EXCLUDED.notify_last_day,
			notify_result   = EXCLUDED.notify_result,
			notify_ceiling  = EXCLUDED.notify_ceiling`,
		a.DeviceID, a.IPOID, a.NotifyLastDay, a.NotifyResult, a.NotifyCeiling)
	if isFKViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("upsert alert device %s ipo %d: %w", a.DeviceID, a.IPOID, err)
	}
	return nil
}

// DeleteAlert removes a per-offering alert.
func (s *DeviceStore) DeleteAlert(ctx context.Context, deviceID uuid.UUID, ipoID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM device_alerts WHERE device_id = $1 AND ipo_id = $2`, deviceID, ipoID)
	if err != nil {
		return fmt.Errorf("delete alert device %s ipo %d: %w", deviceID, ipoID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
