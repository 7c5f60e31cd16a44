package service

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu        sync.Mutex
	byName    map[string]string
	byAccount map[string]string
	ledger    map[string]map[string]bool // date → set of names
	records   []domain.CheckinRecord
	failWith  error // if set, every call returns this error
}

func newStubStore() *stubStore {
	return &stubStore{
		byName:    make(map[string]string),
		byAccount: make(map[string]string),
		ledger:    make(map[string]map[string]bool),
	}
}

func (s *stubStore) UpsertBinding(_ context.Context, name, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if old, ok := s.byAccount[accountID]; ok && old != name {
		delete(s.byName, old)
	}
	if old, ok := s.byName[name]; ok && old != accountID {
		delete(s.byAccount, old)
	}
	s.byName[name] = accountID
	s.byAccount[accountID] = name
	return nil
}

func (s *stubStore) LoadBindings(_ context.Context) (*ports.BindingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	snap := &ports.BindingSnapshot{
		NameToAccount: make(map[string]string, len(s.byName)),
		AccountToName: make(map[string]string, len(s.byAccount)),
	}
	for n, a := range s.byName {
		snap.NameToAccount[n] = a
	}
	for a, n := range s.byAccount {
		snap.AccountToName[a] = n
	}
	return snap, nil
}

func (s *stubStore) RecordCheckin(_ context.Context, name, when, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.records = append(s.records, domain.CheckinRecord{Name: name, When: when, AccountID: accountID})
	return nil
}

func (s *stubStore) markChecked(date, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.ledger[date]
	if set == nil {
		set = make(map[string]bool)
		s.ledger[date] = set
	}
	set[name] = true
}

func (s *stubStore) IsCheckedIn(_ context.Context, name, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if s.ledger[date][name] {
		return true, nil
	}
	for _, r := range s.records {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) ListUnchecked(_ context.Context, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var names []string
	for n := range s.byName {
		if !s.ledger[date][n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ---------------------------------------------------------------------------
// Stub notifier
// ---------------------------------------------------------------------------

type sentMessage struct {
	AccountID string
	Text      string
}

type stubNotifier struct {
	mu       sync.Mutex
	pushes   []sentMessage
	replies  []sentMessage
	pushErr  error
	replyErr error
	// failFor makes Push fail only for the given account id.
	failFor string
}

func (n *stubNotifier) Push(_ context.Context, accountID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pushErr != nil {
		return n.pushErr
	}
	if n.failFor != "" && n.failFor == accountID {
		return domain.ErrNotificationFailed
	}
	n.pushes = append(n.pushes, sentMessage{AccountID: accountID, Text: text})
	return nil
}

func (n *stubNotifier) Reply(_ context.Context, replyToken, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.replyErr != nil {
		return n.replyErr
	}
	n.replies = append(n.replies, sentMessage{AccountID: replyToken, Text: text})
	return nil
}

func (n *stubNotifier) pushCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pushes)
}

// ---------------------------------------------------------------------------
// Stub check-in guard
// ---------------------------------------------------------------------------

type stubGuard struct {
	held     map[string]bool
	acquires int
	releases int
	err      error
}

func newStubGuard() *stubGuard {
	return &stubGuard{held: make(map[string]bool)}
}

func (g *stubGuard) Acquire(_ context.Context, date, name string) (bool, error) {
	g.acquires++
	if g.err != nil {
		return false, g.err
	}
	key := date + "/" + name
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, date, name string) error {
	g.releases++
	delete(g.held, date+"/"+name)
	return nil
}
