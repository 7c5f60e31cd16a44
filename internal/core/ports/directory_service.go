package ports

import "context"

// DirectoryService maintains the name and account-id bidirectional mapping.
// It is a thin façade over the AttendanceStore: no caching, every call is a
// fresh read or write against the active backend.
type DirectoryService interface {
	// Bind trims the name, rejects empty names with domain.ErrEmptyName, and
	// upserts the binding.
	Bind(ctx context.Context, name, accountID string) error
	Snapshot(ctx context.Context) (*BindingSnapshot, error)
	// Resolve returns the account id bound to name, or domain.ErrUnknownIdentity.
	Resolve(ctx context.Context, name string) (string, error)
	// NameOf returns the name bound to accountID, or domain.ErrUnknownIdentity.
	NameOf(ctx context.Context, accountID string) (string, error)
}

// BindingResponder handles inbound free-text messages from the messaging
// platform: status queries, bind commands, and everything else.
type BindingResponder interface {
	// RespondToText returns the reply text for an inbound message. Validation
	// problems (such as an empty name after a bind command) are answered with
	// instructional reply text, not errors; only storage failures return an
	// error.
	RespondToText(ctx context.Context, accountID, text string) (string, error)
}
