// Package line is a minimal client for the LINE Messaging API covering the
// two operations the service needs: replying to a webhook event and pushing
// a message to an account. It also parses and verifies webhook payloads.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/domain"
)

const DefaultBaseURL = "https://api.line.me"

// Client sends messages through the LINE Messaging API using a channel
// access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        zerolog.Logger
}

func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
		log:        log,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Reply answers a webhook event. Reply tokens are single-use and short-lived.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	body := replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	}
	return c.post(ctx, "/v2/bot/message/reply", body)
}

// Push sends a message to the given account id outside a reply window.
func (c *Client) Push(ctx context.Context, accountID, text string) error {
	body := pushRequest{
		To:       accountID,
		Messages: []textMessage{{Type: "text", Text: text}},
	}
	return c.post(ctx, "/v2/bot/message/push", body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", domain.ErrNotificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("body", string(detail)).
			Msg("messaging api rejected request")
		return fmt.Errorf("%w: %s returned %d", domain.ErrNotificationFailed, path, resp.StatusCode)
	}
	return nil
}
