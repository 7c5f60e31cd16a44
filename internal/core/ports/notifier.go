package ports

import "context"

// Notifier abstracts the messaging platform used for confirmations and
// reminders. Delivery failures are reported as errors wrapping
// domain.ErrNotificationFailed, carrying the upstream status and body.
type Notifier interface {
	// Reply answers an inbound webhook event through its one-shot reply token.
	Reply(ctx context.Context, replyToken, text string) error
	// Push sends a message directly to an account id.
	Push(ctx context.Context, accountID, text string) error
}
