package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrRecipientUnreachable marks the expected failure class: the chat does
// not exist, the user blocked the bot, or the account is deactivated.
// Callers treat it as a warning, not an error.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type BotClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewBotClient(token, baseURL string) *BotClient {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &BotClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (c *BotClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if out.OK {
		return nil
	}
	if isUnreachableDescription(out.ErrorCode, out.Description) {
		return fmt.Errorf("%w: %s", ErrRecipientUnreachable, out.Description)
	}
	return fmt.Errorf("telegram: sendMessage failed (%d): %s", out.ErrorCode, out.Description)
}

func isUnreachableDescription(code int, description string) bool {
	if code == http.StatusForbidden {
		return true
	}
	d := strings.ToLower(description)
	return strings.Contains(d, "chat not found") ||
		strings.Contains(d, "bot was blocked") ||
		strings.Contains(d, "user is deactivated")
}
