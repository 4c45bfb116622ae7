package notify

import (
	"context"
	"errors"
	"strings"
)

// Android notification channels registered by the mobile app.
const (
	ChannelIPOAlerts     = "ipo_alerts_v2"
	ChannelCeilingAlerts = "ceiling_alerts_v2"
	ChannelKAPNews       = "kap_news_v2"
	ChannelDefault       = "default_v2"
)

// ErrStaleToken marks a token the push service rejected as no longer valid.
// The dispatcher clears such tokens so the device re-registers cleanly.
var ErrStaleToken = errors.New("stale push token")

// Notification is one push message before token routing. Data values must be
// strings; Firebase rejects anything else.
type Notification struct {
	Title   string
	Body    string
	Data    map[string]string
	Channel string
}

// Sender delivers one notification to one push token.
type Sender interface {
	Send(ctx context.Context, token string, n *Notification) error
}

// IsExpoToken reports whether a token came from expo-notifications rather
// than Firebase.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[")
}

// shortToken truncates a token for log lines.
func shortToken(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
