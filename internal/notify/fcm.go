package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender delivers notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewFCMSender initializes the Firebase app. credentials is either a service
// account file path or the account JSON itself.
func NewFCMSender(ctx context.Context, credentials string, logger *slog.Logger) (*FCMSender, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opt option.ClientOption
	if strings.HasPrefix(strings.TrimSpace(credentials), "{") {
		opt = option.WithCredentialsJSON([]byte(credentials))
	} else {
		opt = option.WithCredentialsFile(credentials)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}

	return &FCMSender{client: client, logger: logger}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, n *Notification) error {
	channel := n.Channel
	if channel == "" {
		channel = ChannelDefault
	}
	badge := 1

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:                 "default",
				ChannelID:             channel,
				Icon:                  "notification_icon",
				DefaultVibrateTimings: true,
				Priority:              messaging.PriorityMax,
				Visibility:            messaging.VisibilityPublic,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}

	id, err := s.client.Send(ctx, msg)
	if err == nil {
		s.logger.Debug("fcm push sent", "message_id", id)
		return nil
	}
	// Unregistered and sender-mismatch tokens are dead; invalid-argument means
	// the token itself is malformed. All three call for cleanup.
	if messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err) || errorutils.IsInvalidArgument(err) {
		return fmt.Errorf("%w: %v", ErrStaleToken, err)
	}
	return fmt.Errorf("fcm send: %w", err)
}
