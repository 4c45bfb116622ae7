package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/store"
)

type registerDeviceRequest struct {
	DeviceKey  string `json:"device_key"`
	FCMToken   string `json:"fcm_token"`
	ExpoToken  string `json:"expo_token"`
	Platform   string `json:"platform"`
	AppVersion string `json:"app_version"`
}

// registerDevice is called on first app launch and on every token refresh.
// Creation answers 201, re-registration 200. Tokens are optional so a client
// can register before the user grants push permission.
func (a *api) registerDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}
	if req.DeviceKey == "" {
		a.respondError(w, r, badRequest("device_key is required"))
		return
	}
	if req.Platform != "" && req.Platform != "ios" && req.Platform != "android" {
		a.respondError(w, r, badRequest("platform must be ios or android"))
		return
	}

	dev, created, err := a.deps.Devices.RegisterDevice(r.Context(), &model.Device{
		DeviceKey:  req.DeviceKey,
		FCMToken:   req.FCMToken,
		ExpoToken:  req.ExpoToken,
		Platform:   req.Platform,
		AppVersion: req.AppVersion,
	})
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, newDeviceResponse(dev))
}

type updateDeviceRequest struct {
	FCMToken   *string `json:"fcm_token"`
	ExpoToken  *string `json:"expo_token"`
	Platform   *string `json:"platform"`
	AppVersion *string `json:"app_version"`

	NotificationsEnabled    *bool `json:"notifications_enabled"`
	NotifyNewIPO            *bool `json:"notify_new_ipo"`
	NotifySubscriptionStart *bool `json:"notify_subscription_start"`
	NotifyLastDay           *bool `json:"notify_last_day"`
	NotifyResult            *bool `json:"notify_result"`
	NotifyCeilingBreak      *bool `json:"notify_ceiling_break"`
	NotifyFirstTradingDay   *bool `json:"notify_first_trading_day"`

	Remind30Min *bool `json:"remind_30min"`
	Remind1H    *bool `json:"remind_1h"`
	Remind2H    *bool `json:"remind_2h"`
	Remind4H    *bool `json:"remind_4h"`
}

// fields maps the set members onto their columns. Absent JSON keys stay
// absent so a patch never clobbers preferences it did not name.
func (req *updateDeviceRequest) fields() map[string]any {
	f := map[string]any{}
	setStr(f, "fcm_token", req.FCMToken)
	setStr(f, "expo_token", req.ExpoToken)
	setStr(f, "platform", req.Platform)
	setStr(f, "app_version", req.AppVersion)
	setBool(f, "notifications_enabled", req.NotificationsEnabled)
	setBool(f, "notify_new_ipo", req.NotifyNewIPO)
	setBool(f, "notify_subscription_start", req.NotifySubscriptionStart)
	setBool(f, "notify_last_day", req.NotifyLastDay)
	setBool(f, "notify_result", req.NotifyResult)
	setBool(f, "notify_ceiling_break", req.NotifyCeilingBreak)
	setBool(f, "notify_first_trading_day", req.NotifyFirstTradingDay)
	setBool(f, "remind_30min", req.Remind30Min)
	setBool(f, "remind_1h", req.Remind1H)
	setBool(f, "remind_2h", req.Remind2H)
	setBool(f, "remind_4h", req.Remind4H)
	return f
}

func setStr(f map[string]any, col string, p *string) {
	if p != nil {
		f[col] = *p
	}
}

func setBool(f map[string]any, col string, p *bool) {
	if p != nil {
		f[col] = *p
	}
}

func (a *api) updateDevice(w http.ResponseWriter, r *http.Request) {
	var req updateDeviceRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}
	if req.Platform != nil && *req.Platform != "ios" && *req.Platform != "android" {
		a.respondError(w, r, badRequest("platform must be ios or android"))
		return
	}
	fields := req.fields()
	if len(fields) == 0 {
		a.respondError(w, r, badRequest("no fields to update"))
		return
	}

	dev, err := a.deps.Devices.UpdateDevice(r.Context(), chi.URLParam(r, "deviceKey"), fields)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeviceResponse(dev))
}

type alertRequest struct {
	IPOID         int64 `json:"ipo_id"`
	NotifyLastDay *bool `json:"notify_last_day"`
	NotifyResult  *bool `json:"notify_result"`
	NotifyCeiling *bool `json:"notify_ceiling"`
}

type alertResponse struct {
	Status string `json:"status"`
	IPOID  int64  `json:"ipo_id,omitempty"`
}

// upsertAlert stores a per-offering override. Omitted flags default to true,
// matching the app's "follow this offering" action.
func (a *api) upsertAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}
	if req.IPOID <= 0 {
		a.respondError(w, r, badRequest("ipo_id is required"))
		return
	}

	dev, err := a.deps.Devices.GetDevice(r.Context(), chi.URLParam(r, "deviceKey"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	err = a.deps.Devices.UpsertAlert(r.Context(), model.DeviceAlert{
		DeviceID:      dev.ID,
		IPOID:         req.IPOID,
		NotifyLastDay: orTrue(req.NotifyLastDay),
		NotifyResult:  orTrue(req.NotifyResult),
		NotifyCeiling: orTrue(req.NotifyCeiling),
	})
	if errors.Is(err, store.ErrNotFound) {
		a.respondError(w, r, notFound("unknown offering"))
		return
	}
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alertResponse{Status: "ok", IPOID: req.IPOID})
}

// deleteAlert is idempotent: removing an alert that never existed still
// answers ok. Only an unknown device is a 404.
func (a *api) deleteAlert(w http.ResponseWriter, r *http.Request) {
	dev, err := a.deps.Devices.GetDevice(r.Context(), chi.URLParam(r, "deviceKey"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	ipoID, err := strconv.ParseInt(chi.URLParam(r, "ipoID"), 10, 64)
	if err != nil {
		a.respondError(w, r, badRequest("ipo_id must be an integer"))
		return
	}

	err = a.deps.Devices.DeleteAlert(r.Context(), dev.ID, ipoID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alertResponse{Status: "ok"})
}

func orTrue(p *bool) bool {
	if p != nil {
		return *p
	}
	return true
}
