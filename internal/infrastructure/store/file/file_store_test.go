package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facecheck/attendance-system/internal/core/domain"
)

// taipei as a fixed offset keeps tests independent of the host zoneinfo
// database (the zone has no DST).
var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir(), taipei)
	s.now = func() time.Time {
		return time.Date(2025, 10, 30, 7, 30, 0, 0, taipei)
	}
	return s
}

func TestStore_EmptyDirIsEmptyState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap, err := s.LoadBindings(ctx)
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	if len(snap.NameToAccount) != 0 {
		t.Fatalf("expected empty directory, got %v", snap.NameToAccount)
	}

	checked, err := s.IsCheckedIn(ctx, "Alice", "2025-10-30")
	if err != nil {
		t.Fatalf("IsCheckedIn: %v", err)
	}
	if checked {
		t.Fatal("expected no check-in in empty store")
	}
}

func TestStore_UpsertAndLoadBindings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertBinding(ctx, "Alice", "U001"); err != nil {
		t.Fatalf("UpsertBinding: %v", err)
	}
	if err := s.UpsertBinding(ctx, "Bob", "U002"); err != nil {
		t.Fatalf("UpsertBinding: %v", err)
	}

	snap, err := s.LoadBindings(ctx)
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	if snap.NameToAccount["Alice"] != "U001" || snap.AccountToName["U002"] != "Bob" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestStore_RebindKeepsBijection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertBinding(ctx, "Alice", "U001"); err != nil {
		t.Fatalf("UpsertBinding: %v", err)
	}
	// Same account claims a new name.
	if err := s.UpsertBinding(ctx, "Alicia", "U001"); err != nil {
		t.Fatalf("UpsertBinding: %v", err)
	}

	snap, err := s.LoadBindings(ctx)
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	if _, ok := snap.NameToAccount["Alice"]; ok {
		t.Fatal("stale name survived rebind")
	}
	if snap.NameToAccount["Alicia"] != "U001" || snap.AccountToName["U001"] != "Alicia" {
		t.Fatalf("unexpected snapshot after rebind: %+v", snap)
	}
	if len(snap.NameToAccount) != 1 || len(snap.AccountToName) != 1 {
		t.Fatalf("bijection broken: %+v", snap)
	}
}

func TestStore_RecordCheckinSortsAndDedupes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Bob", "Alice", "Bob"} {
		if err := s.RecordCheckin(ctx, name, "2025-10-30T07:30:00+08:00", "U00X"); err != nil {
			t.Fatalf("RecordCheckin(%s): %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, ledgerFile))
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	var ledger map[string][]string
	if err := json.Unmarshal(data, &ledger); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	got := ledger["2025-10-30"]
	if len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Fatalf("expected sorted [Alice Bob], got %v", got)
	}
}

func TestStore_IsCheckedInPerDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordCheckin(ctx, "Alice", "", "U001"); err != nil {
		t.Fatalf("RecordCheckin: %v", err)
	}

	checked, err := s.IsCheckedIn(ctx, "Alice", "2025-10-30")
	if err != nil || !checked {
		t.Fatalf("expected checked on record date, got %v, %v", checked, err)
	}
	checked, err = s.IsCheckedIn(ctx, "Alice", "2025-10-31")
	if err != nil || checked {
		t.Fatalf("expected unchecked on other date, got %v, %v", checked, err)
	}
}

func TestStore_ListUnchecked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for name, account := range map[string]string{"Alice": "U001", "Bob": "U002", "Cara": "U003"} {
		if err := s.UpsertBinding(ctx, name, account); err != nil {
			t.Fatalf("UpsertBinding: %v", err)
		}
	}
	if err := s.RecordCheckin(ctx, "Bob", "", "U002"); err != nil {
		t.Fatalf("RecordCheckin: %v", err)
	}

	unchecked, err := s.ListUnchecked(ctx, "2025-10-30")
	if err != nil {
		t.Fatalf("ListUnchecked: %v", err)
	}
	if len(unchecked) != 2 || unchecked[0] != "Alice" || unchecked[1] != "Cara" {
		t.Fatalf("expected [Alice Cara], got %v", unchecked)
	}
}

func TestStore_CorruptDocumentIsStorageUnavailable(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(filepath.Join(s.dir, bindingsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	_, err := s.LoadBindings(context.Background())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

// The ledger key must be the calendar date in the configured zone, not the
// host clock's zone: an instant late on Jan 1 UTC is already Jan 2 in Taipei,
// and the service queries with the Taipei date.
func TestStore_LedgerKeyedOnConfiguredZone(t *testing.T) {
	s := NewStore(t.TempDir(), taipei)
	s.now = func() time.Time {
		// 2025-01-01 20:00 UTC = 2025-01-02 04:00 in Taipei.
		return time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	if err := s.UpsertBinding(ctx, "Alice", "U001"); err != nil {
		t.Fatalf("UpsertBinding: %v", err)
	}
	if err := s.RecordCheckin(ctx, "Alice", "2025-01-02T04:00:00+08:00", "U001"); err != nil {
		t.Fatalf("RecordCheckin: %v", err)
	}

	checked, err := s.IsCheckedIn(ctx, "Alice", "2025-01-02")
	if err != nil {
		t.Fatalf("IsCheckedIn: %v", err)
	}
	if !checked {
		t.Fatal("check-in not visible under the configured-zone date")
	}

	unchecked, err := s.ListUnchecked(ctx, "2025-01-02")
	if err != nil {
		t.Fatalf("ListUnchecked: %v", err)
	}
	if len(unchecked) != 0 {
		t.Fatalf("expected nobody unchecked, got %v", unchecked)
	}
}

func TestStore_WritesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewStore(dir, taipei)
	if err := first.UpsertBinding(ctx, "Alice", "U001"); err != nil {
		t.Fatalf("UpsertBinding: %v", err)
	}
	if err := first.RecordCheckin(ctx, "Alice", "", "U001"); err != nil {
		t.Fatalf("RecordCheckin: %v", err)
	}

	second := NewStore(dir, taipei)
	snap, err := second.LoadBindings(ctx)
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	if snap.NameToAccount["Alice"] != "U001" {
		t.Fatalf("binding lost across reopen: %+v", snap)
	}

	info, err := second.Probe(ctx)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Backend != "file" || info.Bindings != 1 || info.LedgerRows != 1 {
		t.Fatalf("unexpected probe: %+v", info)
	}
}
