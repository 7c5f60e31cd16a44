package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// Message intents recognized on the webhook, matched in this order.
const (
	cmdStatusPrefix = "status"
	cmdBindPrefix   = "bind "
)

const (
	replyNotBound   = `You are not bound yet. Send "bind <your name>" to get started.`
	replyBindFormat = `Please use the format: bind <your name>`
	replyBindSaved  = "Binding saved. A confirmation was sent to you."
	replyHelpBound  = "Commands:\n1) bind <your name> (update your binding)\n2) status (show your binding)"
)

// BindingService interprets inbound webhook text: status queries, bind
// commands, and contextual help for everything else.
type BindingService struct {
	directory ports.DirectoryService
	notifier  ports.Notifier
	logger    zerolog.Logger
}

func NewBindingService(directory ports.DirectoryService, notifier ports.Notifier, logger zerolog.Logger) *BindingService {
	return &BindingService{directory: directory, notifier: notifier, logger: logger}
}

// RespondToText returns the reply for one inbound text message. Malformed
// bind commands are answered with instructional text and persist nothing;
// only storage failures surface as errors.
func (s *BindingService) RespondToText(ctx context.Context, accountID, text string) (string, error) {
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, cmdStatusPrefix):
		return s.respondStatus(ctx, accountID)
	case strings.HasPrefix(text, cmdBindPrefix):
		return s.respondBind(ctx, accountID, strings.TrimPrefix(text, cmdBindPrefix))
	default:
		return s.respondHelp(ctx, accountID)
	}
}

func (s *BindingService) respondStatus(ctx context.Context, accountID string) (string, error) {
	name, err := s.directory.NameOf(ctx, accountID)
	if errors.Is(err, domain.ErrUnknownIdentity) {
		return replyNotBound, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You are currently bound as %s.", name), nil
}

func (s *BindingService) respondBind(ctx context.Context, accountID, rawName string) (string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return replyBindFormat, nil
	}

	if err := s.directory.Bind(ctx, name, accountID); err != nil {
		if errors.Is(err, domain.ErrEmptyName) {
			return replyBindFormat, nil
		}
		return "", err
	}

	confirmation := fmt.Sprintf("Bound as %s.\nYour account id is %s.", name, accountID)

	// The full confirmation goes out as a push so the user keeps a copy in
	// their own chat. When the push fails, the confirmation becomes the reply.
	if err := s.notifier.Push(ctx, accountID, confirmation); err != nil {
		s.logger.Warn().Err(err).Str("account_id", accountID).Msg("bind confirmation push failed, replying with confirmation")
		return confirmation, nil
	}

	return replyBindSaved, nil
}

func (s *BindingService) respondHelp(ctx context.Context, accountID string) (string, error) {
	_, err := s.directory.NameOf(ctx, accountID)
	if errors.Is(err, domain.ErrUnknownIdentity) {
		return replyNotBound, nil
	}
	if err != nil {
		return "", err
	}
	return replyHelpBound, nil
}
