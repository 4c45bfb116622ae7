package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kyaraz/halkaarz/internal/fetch"
)

// ExpoSender delivers notifications through the Expo Push API for clients
// that registered an ExponentPushToken instead of a raw FCM token.
type ExpoSender struct {
	api    *fetch.Client
	logger *slog.Logger
}

func NewExpoSender(api *fetch.Client, logger *slog.Logger) *ExpoSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpoSender{api: api, logger: logger}
}

type expoPush struct {
	To        string            `json:"to"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Sound     string            `json:"sound"`
	Priority  string            `json:"priority"`
	ChannelID string            `json:"channelId"`
}

// expoReceipt is the per-message ticket inside the response envelope.
type expoReceipt struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

func (s *ExpoSender) Send(ctx context.Context, token string, n *Notification) error {
	channel := n.Channel
	if channel == "" {
		channel = ChannelDefault
	}

	payload := expoPush{
		To:        token,
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		Sound:     "default",
		Priority:  "high",
		ChannelID: channel,
	}

	var resp struct {
		Data expoReceipt `json:"data"`
	}
	if err := s.api.PostJSON(ctx, "", payload, &resp); err != nil {
		return fmt.Errorf("expo send: %w", err)
	}

	if resp.Data.Status == "ok" {
		s.logger.Debug("expo push sent", "token", shortToken(token))
		return nil
	}

	reason := resp.Data.Details.Error
	if reason == "" {
		reason = resp.Data.Message
	}
	if reason == "DeviceNotRegistered" || reason == "InvalidCredentials" ||
		strings.Contains(resp.Data.Message, "DeviceNotRegistered") {
		return fmt.Errorf("%w: expo %s", ErrStaleToken, reason)
	}
	return fmt.Errorf("expo send: %s", reason)
}
