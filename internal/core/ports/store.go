package ports

import "context"

// BindingSnapshot is a full read of the identity directory, both directions.
// The maps are freshly allocated on every load; callers may mutate them.
type BindingSnapshot struct {
	NameToAccount map[string]string `json:"name_to_account"`
	AccountToName map[string]string `json:"account_to_name"`
}

// AttendanceStore defines persistence operations for identity bindings and
// the daily check-in ledger. Exactly one implementation (local file or
// Google Sheets) is active per process, selected at startup.
//
// Deduplication of check-ins is enforced by the check-in service, not here:
// the ledger itself has append semantics and may accept duplicate rows.
// Implementations normalize their transport errors into
// domain.ErrStorageUnavailable so callers never inspect backend-specific
// error shapes.
type AttendanceStore interface {
	// UpsertBinding inserts or updates a binding, keeping the directory a
	// bijection: any previous binding for the same name or account id is
	// replaced.
	UpsertBinding(ctx context.Context, name, accountID string) error
	LoadBindings(ctx context.Context) (*BindingSnapshot, error)
	// RecordCheckin appends a ledger row for the given local calendar day.
	RecordCheckin(ctx context.Context, name, when, accountID string) error
	IsCheckedIn(ctx context.Context, name, date string) (bool, error)
	// ListUnchecked returns all bound names with no ledger row for date.
	ListUnchecked(ctx context.Context, date string) ([]string, error)
}

// StorageInfo summarises the active backend for diagnostics.
type StorageInfo struct {
	Backend    string   `json:"backend"`
	Bindings   int      `json:"bindings"`
	LedgerRows int      `json:"ledger_rows"`
	Worksheets []string `json:"worksheets,omitempty"`
}

// StoreDiagnostics is implemented by backends that can report their own
// health and shape; used by the readiness probe and the debug endpoint.
type StoreDiagnostics interface {
	Probe(ctx context.Context) (*StorageInfo, error)
}
