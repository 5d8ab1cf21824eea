package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookSender posts rendered messages to a delivery webhook (the actual
// template rendering and email transport live behind that endpoint).
type WebhookSender struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookSender returns a Sender that posts to the given URL. An empty
// URL yields a sender that only logs, which keeps local development quiet.
func NewWebhookSender(url string, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	if s.url == "" {
		s.logger.Info("notification webhook not configured, skipping send",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	payload := map[string]string{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}
	if len(msg.Attachment) > 0 {
		payload["attachment"] = base64.StdEncoding.EncodeToString(msg.Attachment)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
