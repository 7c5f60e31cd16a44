package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// SignatureHeader carries the channel-secret HMAC of the webhook body.
const SignatureHeader = "X-Line-Signature"

// WebhookEvent is one entry in a webhook delivery. Only text messages and
// follow events are acted on; everything else is ignored upstream.
type WebhookEvent struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
}

type Source struct {
	UserID string `json:"userId"`
}

type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type webhookPayload struct {
	Events []WebhookEvent `json:"events"`
}

// ParseWebhook decodes a webhook delivery body into its events.
func ParseWebhook(body []byte) ([]WebhookEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	return payload.Events, nil
}

// ValidateSignature reports whether signature is the base64 HMAC-SHA256 of
// body under the channel secret.
func ValidateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}
