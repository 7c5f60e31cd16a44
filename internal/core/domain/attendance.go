package domain

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date key format used by the check-in ledger.
const DateLayout = "2006-01-02"

var ErrUnknownIdentity = errors.New("identity not bound")
var ErrEmptyName = errors.New("name must not be empty")
var ErrMalformedTimestamp = errors.New("malformed timestamp")
var ErrStorageUnavailable = errors.New("storage unavailable")
var ErrNotificationFailed = errors.New("notification delivery failed")

// Binding links a display name to a messaging-platform account id.
// The directory keeps at most one live binding per name and per account id.
type Binding struct {
	Name      string    `json:"name"`
	AccountID string    `json:"account_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckinRecord is a single append-only ledger row. When is the
// client-asserted ISO-8601 instant; Date is the local calendar day the
// check-in was accepted on.
type CheckinRecord struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	When      string `json:"when"`
	AccountID string `json:"account_id"`
}
