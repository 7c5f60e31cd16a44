// Package file implements the AttendanceStore on two local JSON documents:
// bindings.json for the identity directory and checkin_log.json for the
// per-day ledger. It is the development and single-host fallback when no
// spreadsheet is configured.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

const (
	bindingsFile = "bindings.json"
	ledgerFile   = "checkin_log.json"
)

// bindingsDoc is the on-disk shape of the directory. Both directions are
// persisted so the document stays readable as a plain lookup table.
type bindingsDoc struct {
	ByName    map[string]string `json:"by_name"`
	ByAccount map[string]string `json:"by_account"`
	UpdatedAt map[string]string `json:"updated_at"`
}

func newBindingsDoc() *bindingsDoc {
	return &bindingsDoc{
		ByName:    make(map[string]string),
		ByAccount: make(map[string]string),
		UpdatedAt: make(map[string]string),
	}
}

// ledgerDoc maps a calendar-date string to the sorted set of checked-in names.
type ledgerDoc map[string][]string

// Store persists bindings and the check-in ledger as JSON files under dir.
// A process-wide mutex serialises writers; cross-process coordination is out
// of scope (writes are idempotent upserts and appends).
//
// Ledger rows are keyed on the calendar date in loc, the service's configured
// zone, so the key always matches the date callers pass to IsCheckedIn and
// ListUnchecked regardless of the host clock's zone.
type Store struct {
	mu  sync.Mutex
	dir string
	loc *time.Location
	now func() time.Time
}

func NewStore(dir string, loc *time.Location) *Store {
	return &Store{dir: dir, loc: loc, now: time.Now}
}

func (s *Store) UpsertBinding(ctx context.Context, name, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadBindingsDoc()
	if err != nil {
		return err
	}

	// Keep the mapping a bijection: drop whatever the account or the name
	// previously pointed at before writing the new pair.
	if oldName, ok := doc.ByAccount[accountID]; ok && oldName != name {
		delete(doc.ByName, oldName)
		delete(doc.UpdatedAt, oldName)
	}
	if oldAccount, ok := doc.ByName[name]; ok && oldAccount != accountID {
		delete(doc.ByAccount, oldAccount)
	}

	doc.ByName[name] = accountID
	doc.ByAccount[accountID] = name
	doc.UpdatedAt[name] = s.now().Format(time.RFC3339)

	return s.writeJSON(bindingsFile, doc)
}

func (s *Store) LoadBindings(ctx context.Context) (*ports.BindingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadBindingsDoc()
	if err != nil {
		return nil, err
	}

	snap := &ports.BindingSnapshot{
		NameToAccount: make(map[string]string, len(doc.ByName)),
		AccountToName: make(map[string]string, len(doc.ByAccount)),
	}
	for n, a := range doc.ByName {
		snap.NameToAccount[n] = a
	}
	for a, n := range doc.ByAccount {
		snap.AccountToName[a] = n
	}
	return snap, nil
}

// RecordCheckin adds name to today's set. The local ledger keeps only the
// name set per day; when and accountID live in the spreadsheet backend's
// richer schema.
func (s *Store) RecordCheckin(ctx context.Context, name, when, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadLedgerDoc()
	if err != nil {
		return err
	}

	date := s.now().In(s.loc).Format(domain.DateLayout)
	names := ledger[date]
	for _, n := range names {
		if n == name {
			return nil // append is idempotent per (date, name)
		}
	}
	names = append(names, name)
	sort.Strings(names)
	ledger[date] = names

	return s.writeJSON(ledgerFile, ledger)
}

func (s *Store) IsCheckedIn(ctx context.Context, name, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadLedgerDoc()
	if err != nil {
		return false, err
	}
	for _, n := range ledger[date] {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListUnchecked(ctx context.Context, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadBindingsDoc()
	if err != nil {
		return nil, err
	}
	ledger, err := s.loadLedgerDoc()
	if err != nil {
		return nil, err
	}

	checked := make(map[string]bool, len(ledger[date]))
	for _, n := range ledger[date] {
		checked[n] = true
	}

	unchecked := make([]string, 0, len(doc.ByName))
	for n := range doc.ByName {
		if !checked[n] {
			unchecked = append(unchecked, n)
		}
	}
	sort.Strings(unchecked)
	return unchecked, nil
}

// Probe reports the store shape for readiness and diagnostics.
func (s *Store) Probe(ctx context.Context) (*ports.StorageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadBindingsDoc()
	if err != nil {
		return nil, err
	}
	ledger, err := s.loadLedgerDoc()
	if err != nil {
		return nil, err
	}

	rows := 0
	for _, names := range ledger {
		rows += len(names)
	}
	return &ports.StorageInfo{
		Backend:    "file",
		Bindings:   len(doc.ByName),
		LedgerRows: rows,
	}, nil
}

func (s *Store) loadBindingsDoc() (*bindingsDoc, error) {
	doc := newBindingsDoc()
	if err := s.readJSON(bindingsFile, doc); err != nil {
		return nil, err
	}
	// Guard against hand-edited documents missing a map.
	if doc.ByName == nil {
		doc.ByName = make(map[string]string)
	}
	if doc.ByAccount == nil {
		doc.ByAccount = make(map[string]string)
	}
	if doc.UpdatedAt == nil {
		doc.UpdatedAt = make(map[string]string)
	}
	return doc, nil
}

func (s *Store) loadLedgerDoc() (ledgerDoc, error) {
	ledger := make(ledgerDoc)
	if err := s.readJSON(ledgerFile, &ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// readJSON decodes the named document into v. A missing file is an empty
// store, not an error; everything else is normalized to ErrStorageUnavailable.
func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	return nil
}

// writeJSON writes v to a temp file and renames it into place so readers
// never observe a torn document.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageUnavailable, name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	return nil
}
