package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/api/metrics"
	"github.com/facecheck/attendance-system/internal/core/ports"
	"github.com/facecheck/attendance-system/internal/infrastructure/line"
)

const welcomeText = "Welcome! Send \"bind <your name>\" to link this account, then you can check in."

// WebhookHandler receives LINE webhook deliveries, verifies their signature,
// and routes text messages to the binding responder.
type WebhookHandler struct {
	channelSecret string
	responder     ports.BindingResponder
	notifier      ports.Notifier
	log           zerolog.Logger
}

func NewWebhookHandler(channelSecret string, responder ports.BindingResponder, notifier ports.Notifier, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		responder:     responder,
		notifier:      notifier,
		log:           log,
	}
}

// Receive processes one webhook delivery. After the signature check the
// platform always gets a 200; per-event failures are logged, never surfaced,
// so the platform does not retry the whole batch.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	signature := c.Request().Header.Get(line.SignatureHeader)
	if !line.ValidateSignature(h.channelSecret, body, signature) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	events, err := line.ParseWebhook(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed payload")
	}

	ctx := c.Request().Context()
	for _, ev := range events {
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type).Inc()

		switch {
		case ev.Type == "follow":
			h.reply(ctx, ev, welcomeText)
		case ev.Type == "message" && ev.Message.Type == "text":
			reply, err := h.responder.RespondToText(ctx, ev.Source.UserID, ev.Message.Text)
			if err != nil {
				h.log.Error().Err(err).
					Str("account_id", ev.Source.UserID).
					Msg("webhook event processing failed")
				continue
			}
			h.reply(ctx, ev, reply)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// reply answers through the event's reply token, falling back to a push when
// the token is spent or rejected.
func (h *WebhookHandler) reply(ctx context.Context, ev line.WebhookEvent, text string) {
	if err := h.notifier.Reply(ctx, ev.ReplyToken, text); err != nil {
		h.log.Warn().Err(err).Msg("reply failed, pushing instead")
		if err := h.notifier.Push(ctx, ev.Source.UserID, text); err != nil {
			h.log.Error().Err(err).
				Str("account_id", ev.Source.UserID).
				Msg("push fallback failed")
		}
	}
}
