package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spikeradar/internal/classify"
	"spikeradar/internal/model"
)

// Notification carries one newly detected spike.
type Notification struct {
	Alert      model.Alert
	DetectedAt time.Time
}

// Notifier delivers spike notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

const (
	defaultTelegramBase    = "https://api.telegram.org"
	defaultTelegramTimeout = 10 * time.Second
)

// TelegramNotifier posts spike messages to one chat through the Bot API.
type TelegramNotifier struct {
	endpoint string
	chatID   string
	client   *http.Client
	logger   zerolog.Logger
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier builds a notifier for chatID. An empty baseURL targets the public Bot API.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = defaultTelegramTimeout
	}
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultTelegramBase
	}
	return &TelegramNotifier{
		endpoint: base + "/bot" + botToken + "/sendMessage",
		chatID:   chatID,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "spike_notifier").Str("channel", "telegram").Logger(),
	}
}

// Notify sends the rendered alert. Telegram's own error description is
// surfaced when the API rejects the message.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  renderMessage(note),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode spike message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver spike %s: %w", note.Alert.ID, err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)
	switch {
	case resp.StatusCode/100 != 2 && result.Description != "":
		return fmt.Errorf("telegram rejected spike %s: %s", note.Alert.ID, result.Description)
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("telegram rejected spike %s: status %d", note.Alert.ID, resp.StatusCode)
	case decodeErr == nil && !result.OK:
		return fmt.Errorf("telegram rejected spike %s: %s", note.Alert.ID, strings.TrimSpace("ok=false "+result.Description))
	}

	n.logger.Info().Str("alert_id", string(note.Alert.ID)).
		Str("creator", note.Alert.CreatorHandle).
		Str("urgency", string(note.Alert.Urgency)).
		Msg("spike notification sent")
	return nil
}

func renderMessage(note Notification) string {
	alert := note.Alert
	tier := classify.ClassifyUrgency(alert.Urgency)

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("[%s] @%s\n", tier.Label, alert.CreatorHandle))
	if alert.Headline != "" {
		builder.WriteString(alert.Headline + "\n")
	}
	builder.WriteString(fmt.Sprintf("Velocity: %s, %s views, posted %s\n",
		classify.FormatMultiplier(alert.VelocityMultiplier),
		classify.FormatViews(alert.ViewsAtDetection),
		classify.HoursAgo(alert.HoursSincePost)))
	if alert.DetectedFormat != "" {
		builder.WriteString(fmt.Sprintf("Format: %s\n", alert.DetectedFormat))
	}
	if peak, ok := classify.PeakLabel(alert.EstimatedPeakHours); ok {
		builder.WriteString(fmt.Sprintf("Window: %s\n", peak))
	}
	if alert.DraftHook != "" {
		builder.WriteString(fmt.Sprintf("Hook: %s\n", alert.DraftHook))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
