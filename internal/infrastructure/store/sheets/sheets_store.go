// Package sheets implements the AttendanceStore on a Google Spreadsheet so
// the directory and the ledger stay visible and editable by non-operators.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

const (
	usersSheet  = "users"
	ledgerSheet = "checkin_log"

	callTimeout = 10 * time.Second
)

var (
	usersHeader  = []any{"name", "account_id", "updated_at"}
	ledgerHeader = []any{"date", "name", "when", "account_id"}
)

// Store talks to one spreadsheet with two worksheets: users holds the
// identity directory, checkin_log holds one row per check-in. Worksheets and
// header rows are created lazily on first use.
//
// Ledger rows are keyed on the calendar date in loc, the service's configured
// zone, so the key always matches the date callers pass to IsCheckedIn and
// ListUnchecked regardless of the host clock's zone.
type Store struct {
	svc           *sheetsv4.Service
	spreadsheetID string
	loc           *time.Location
	now           func() time.Time
}

// NewStore authenticates with the given service-account credentials JSON and
// binds to spreadsheetID.
func NewStore(ctx context.Context, credentialsJSON []byte, spreadsheetID string, loc *time.Location) (*Store, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, sheetsv4.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := sheetsv4.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, loc: loc, now: time.Now}, nil
}

func (s *Store) UpsertBinding(ctx context.Context, name, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := s.readRows(ctx, usersSheet, usersHeader)
	if err != nil {
		return err
	}

	b := domain.Binding{Name: name, AccountID: accountID, UpdatedAt: s.now()}
	row := []any{b.Name, b.AccountID, b.UpdatedAt.Format(time.RFC3339)}

	target, stale := planBindingUpsert(rows, name, accountID)

	// A rename can collide with a row that already holds the new name under
	// another account. Blank that row so the directory stays a bijection;
	// LoadBindings skips blank rows.
	if stale >= 0 {
		if err := s.updateRow(ctx, usersSheet, stale+2, []any{"", "", ""}); err != nil {
			return err
		}
	}
	if target >= 0 {
		return s.updateRow(ctx, usersSheet, target+2, row)
	}
	return s.appendRow(ctx, usersSheet, row)
}

// planBindingUpsert decides where the new (name, accountID) pair lands.
// target is the 0-based data row to overwrite, -1 to append. stale is a
// 0-based row that would leave the directory with two live bindings for the
// same name and must be blanked, -1 when there is none. The account-id match
// wins so a rename follows the account.
func planBindingUpsert(rows [][]any, name, accountID string) (target, stale int) {
	accountIdx, nameIdx := -1, -1
	for i, r := range rows {
		if accountIdx == -1 && cell(r, 1) == accountID {
			accountIdx = i
		}
		if nameIdx == -1 && cell(r, 0) == name {
			nameIdx = i
		}
	}

	if accountIdx >= 0 {
		if nameIdx >= 0 && nameIdx != accountIdx {
			return accountIdx, nameIdx
		}
		return accountIdx, -1
	}
	return nameIdx, -1
}

func (s *Store) LoadBindings(ctx context.Context) (*ports.BindingSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := s.readRows(ctx, usersSheet, usersHeader)
	if err != nil {
		return nil, err
	}

	snap := &ports.BindingSnapshot{
		NameToAccount: make(map[string]string, len(rows)),
		AccountToName: make(map[string]string, len(rows)),
	}
	for _, r := range rows {
		name, account := cell(r, 0), cell(r, 1)
		if name == "" || account == "" {
			continue
		}
		snap.NameToAccount[name] = account
		snap.AccountToName[account] = name
	}
	return snap, nil
}

func (s *Store) RecordCheckin(ctx context.Context, name, when, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if _, err := s.readRows(ctx, ledgerSheet, ledgerHeader); err != nil {
		return err
	}
	rec := domain.CheckinRecord{
		Date:      s.now().In(s.loc).Format(domain.DateLayout),
		Name:      name,
		When:      when,
		AccountID: accountID,
	}
	return s.appendRow(ctx, ledgerSheet, []any{rec.Date, rec.Name, rec.When, rec.AccountID})
}

func (s *Store) IsCheckedIn(ctx context.Context, name, date string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := s.readRows(ctx, ledgerSheet, ledgerHeader)
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if cell(r, 0) == date && cell(r, 1) == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListUnchecked(ctx context.Context, date string) ([]string, error) {
	snap, err := s.LoadBindings(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := s.readRows(ctx, ledgerSheet, ledgerHeader)
	if err != nil {
		return nil, err
	}
	checked := make(map[string]bool)
	for _, r := range rows {
		if cell(r, 0) == date {
			checked[cell(r, 1)] = true
		}
	}

	unchecked := make([]string, 0, len(snap.NameToAccount))
	for name := range snap.NameToAccount {
		if !checked[name] {
			unchecked = append(unchecked, name)
		}
	}
	sort.Strings(unchecked)
	return unchecked, nil
}

// Probe verifies the spreadsheet is reachable and reports its shape.
func (s *Store) Probe(ctx context.Context) (*ports.StorageInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get spreadsheet: %v", domain.ErrStorageUnavailable, err)
	}
	worksheets := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		worksheets = append(worksheets, sh.Properties.Title)
	}

	info := &ports.StorageInfo{Backend: "sheets", Worksheets: worksheets}
	if hasSheet(worksheets, usersSheet) {
		rows, err := s.readRows(ctx, usersSheet, usersHeader)
		if err != nil {
			return nil, err
		}
		info.Bindings = len(rows)
	}
	if hasSheet(worksheets, ledgerSheet) {
		rows, err := s.readRows(ctx, ledgerSheet, ledgerHeader)
		if err != nil {
			return nil, err
		}
		info.LedgerRows = len(rows)
	}
	return info, nil
}

// readRows returns the data rows of the named worksheet, excluding the
// header. The worksheet and its header row are created on first access.
func (s *Store) readRows(ctx context.Context, sheet string, header []any) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		// Only an unparsable/unknown range means the worksheet does not
		// exist yet; auth and transport failures must not trigger creation.
		if !isMissingSheet(err) {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorageUnavailable, sheet, err)
		}
		if err := s.ensureSheet(ctx, sheet, header); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if len(resp.Values) == 0 {
		if err := s.appendRow(ctx, sheet, header); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return resp.Values[1:], nil
}

func (s *Store) ensureSheet(ctx context.Context, sheet string, header []any) error {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: sheet},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: create worksheet %s: %v", domain.ErrStorageUnavailable, sheet, err)
	}
	return s.appendRow(ctx, sheet, header)
}

func (s *Store) appendRow(ctx context.Context, sheet string, row []any) error {
	vr := &sheetsv4.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, sheet, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: append to %s: %v", domain.ErrStorageUnavailable, sheet, err)
	}
	return nil
}

// updateRow rewrites one data row. rowNum is the 1-based spreadsheet row
// (the header occupies row 1).
func (s *Store) updateRow(ctx context.Context, sheet string, rowNum int, row []any) error {
	rng := fmt.Sprintf("%s!A%d", sheet, rowNum)
	vr := &sheetsv4.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: update %s row %d: %v", domain.ErrStorageUnavailable, sheet, rowNum, err)
	}
	return nil
}

// isMissingSheet reports whether err is the API's answer to a range naming a
// worksheet that does not exist (400 "Unable to parse range" or 404).
func isMissingSheet(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusNotFound
}

func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func hasSheet(titles []string, want string) bool {
	for _, t := range titles {
		if t == want {
			return true
		}
	}
	return false
}
