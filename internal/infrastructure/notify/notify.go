// Package notify delivers staff notifications about new leads.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	leadapp "github.com/webstudio/backend/internal/application/lead"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns a webhook notifier when a URL is configured and a log notifier otherwise
func New(cfg config.NotifyConfig, logger *zap.Logger) leadapp.Notifier {
	if cfg.WebhookURL == "" {
		return NewLogNotifier(logger)
	}
	return NewWebhookNotifier(cfg.WebhookURL, cfg.Timeout, logger)
}

// webhookPayload is understood by Slack ("text"), Discord ("content") and most chat bridges
type webhookPayload struct {
	Text    string            `json:"text"`
	Content string            `json:"content"`
	Title   string            `json:"title"`
	Link    string            `json:"link,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WebhookNotifier posts notifications as JSON
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

var _ leadapp.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a notifier posting to url
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Notify posts n and fails on any non-2xx answer
func (w *WebhookNotifier) Notify(ctx context.Context, n leadapp.Notification) error {
	text := n.Title
	if n.Text != "" {
		text += "\n" + n.Text
	}
	body, err := json.Marshal(webhookPayload{
		Text:    text,
		Content: text,
		Title:   n.Title,
		Link:    n.Link,
		Fields:  n.Fields,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with HTTP %d", resp.StatusCode)
	}
	w.logger.Debug("Notification delivered", zap.String("title", n.Title))
	return nil
}

// LogNotifier writes notifications to the application log
type LogNotifier struct {
	logger *zap.Logger
}

var _ leadapp.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs n at info level
func (l *LogNotifier) Notify(_ context.Context, n leadapp.Notification) error {
	fields := []zap.Field{zap.String("title", n.Title), zap.String("text", n.Text)}
	if n.Link != "" {
		fields = append(fields, zap.String("link", n.Link))
	}
	for k, v := range n.Fields {
		fields = append(fields, zap.String("field."+k, v))
	}
	l.logger.Info("Notification", fields...)
	return nil
}
