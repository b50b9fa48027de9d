// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// ErrConflict means another process is receiving updates for the same
// bot identity (an active webhook or a second poller). The supervisor
// owns the recovery; callers should log and keep going.
var ErrConflict = errors.New("conflict: another process is receiving updates for this bot")

// Client is a minimal Bot API client covering exactly the calls this
// bot makes. Zero-value fields fall back to production defaults, so
// tests can point BaseURL at an httptest server.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		Token:      token,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 65 * time.Second}, // above the long-poll window
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	url := c.BaseURL + "/bot" + c.Token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("telegram %s: bad response: %w", method, err)
	}

	if !apiResp.OK {
		if apiResp.ErrorCode == http.StatusConflict {
			return fmt.Errorf("telegram %s: %w: %s", method, ErrConflict, apiResp.Description)
		}
		return fmt.Errorf("telegram %s: API error %d: %s", method, apiResp.ErrorCode, apiResp.Description)
	}

	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("telegram %s: bad result: %w", method, err)
		}
	}
	return nil
}

// SendMessage sends a plain-text message
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// SendMarkdown sends a Markdown-formatted message
func (c *Client) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}, nil)
}

// SendPoll sends a poll and returns its poll ID
func (c *Client) SendPoll(ctx context.Context, chatID int64, question string, options []string, anonymous bool) (string, error) {
	var msg Message
	err := c.call(ctx, "sendPoll", map[string]any{
		"chat_id":      chatID,
		"question":     question,
		"options":      options,
		"is_anonymous": anonymous,
	}, &msg)
	if err != nil {
		return "", err
	}
	if msg.Poll == nil {
		return "", errors.New("telegram sendPoll: response carried no poll")
	}
	return msg.Poll.ID, nil
}

// GetWebhookInfo reports the current webhook/session status
func (c *Client) GetWebhookInfo(ctx context.Context) (WebhookInfo, error) {
	var info WebhookInfo
	err := c.call(ctx, "getWebhookInfo", map[string]any{}, &info)
	return info, err
}

// DeleteWebhook removes any active webhook so long polling can run
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	return c.call(ctx, "deleteWebhook", map[string]any{
		"drop_pending_updates": dropPending,
	}, nil)
}

// SetMyCommands registers the bot's command list
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	return c.call(ctx, "setMyCommands", map[string]any{
		"commands": commands,
	}, nil)
}

// GetUpdates long-polls for new updates starting at offset
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "poll_answer"},
	}, &updates)
	return updates, err
}
