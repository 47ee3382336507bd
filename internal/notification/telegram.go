package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when the bot token or chat id is unset.
var ErrNotConfigured = errors.New("telegram: not configured")

// TelegramNotifier sends plain-text messages via the Telegram Bot API.
type TelegramNotifier struct {
	// Credentials returns the current (bot token, chat id) pair. Read
	// per send so runtime settings changes take effect immediately.
	credentials func() (botToken, chatID string)
	baseURL     string
	client      *http.Client
}

// NewTelegramNotifier creates a Telegram notifier reading credentials
// through the given hook.
func NewTelegramNotifier(credentials func() (string, string)) *TelegramNotifier {
	return &TelegramNotifier{
		credentials: credentials,
		baseURL:     "https://api.telegram.org",
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	botToken, chatID := t.credentials()
	if botToken == "" || chatID == "" {
		return ErrNotConfigured
	}

	body, _ := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}
