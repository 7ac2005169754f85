// Package telegram is a thin adapter to the Telegram Bot API: a long-poll
// update loop on the inbound side and sendMessage on the outbound side.
// It owns no business logic; updates are converted to transport-neutral
// bot.Inbound values and handed to the router, and it implements the
// dispatch.Sender contract for replies.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docbot/internal/bot"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client is a minimal Bot API client.
type Client struct {
	Token string

	// BaseURL overrides the API endpoint; used in tests. Defaults to
	// DefaultBaseURL when empty.
	BaseURL string

	// HTTPClient defaults to a client with a generous timeout sized for
	// long polling.
	HTTPClient *http.Client
}

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s: %s (%d)", e.Method, e.Description, e.Code)
}

// Wire types, reduced to the fields the bot consumes.

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound message.
type Message struct {
	MessageID int64     `json:"message_id"`
	Date      int64     `json:"date"`
	Text      string    `json:"text"`
	Caption   string    `json:"caption"`
	From      *User     `json:"from"`
	Chat      Chat      `json:"chat"`
	Document  *Document `json:"document"`
}

// User is the message sender.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Chat is the conversation the message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Document is a file attachment.
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Command is one entry for setMyCommands.
type Command struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", base, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 90 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("telegram: %s: decode response: %w", method, err)
	}
	if !env.OK {
		return &APIError{Method: method, Code: env.ErrorCode, Description: env.Description}
	}
	if result != nil {
		return json.Unmarshal(env.Result, result)
	}
	return nil
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendReply delivers text to chatID, threaded under replyTo when non-zero.
// It implements dispatch.Sender.
func (c *Client) SendReply(ctx context.Context, chatID, replyTo int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if replyTo != 0 {
		payload["reply_to_message_id"] = replyTo
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// SetCommands registers the bot's command surface for discoverability.
func (c *Client) SetCommands(ctx context.Context, commands []Command) error {
	return c.call(ctx, "setMyCommands", map[string]any{"commands": commands}, nil)
}

// ToInbound converts an update to the transport-neutral inbound form.
// It reports false for updates that carry no message.
func ToInbound(u Update) (bot.Inbound, bool) {
	m := u.Message
	if m == nil {
		return bot.Inbound{}, false
	}
	in := bot.Inbound{
		ChatID:     m.Chat.ID,
		MessageID:  m.MessageID,
		Text:       m.Text,
		ReceivedAt: time.Unix(m.Date, 0),
	}
	if m.From != nil {
		in.UserID = m.From.ID
		in.SenderName = senderName(m.From)
	}
	if m.Document != nil {
		in.FileID = m.Document.FileID
		in.FileName = m.Document.FileName
		in.Caption = m.Caption
	}
	return in, true
}

func senderName(u *User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
