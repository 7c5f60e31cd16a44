package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// DirectoryService is a thin façade over the AttendanceStore for binding
// operations. The store is the sole source of truth: nothing is cached here,
// so concurrent workers always observe the latest bindings.
type DirectoryService struct {
	store  ports.AttendanceStore
	logger zerolog.Logger
}

func NewDirectoryService(store ports.AttendanceStore, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{store: store, logger: logger}
}

// Bind trims name and upserts the binding. Empty names are rejected before
// any store access.
func (s *DirectoryService) Bind(ctx context.Context, name, accountID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}

	if err := s.store.UpsertBinding(ctx, name, accountID); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to upsert binding")
		return err
	}

	s.logger.Info().Str("name", name).Str("account_id", accountID).Msg("binding upserted")
	return nil
}

// Snapshot returns the full directory, both directions.
func (s *DirectoryService) Snapshot(ctx context.Context) (*ports.BindingSnapshot, error) {
	return s.store.LoadBindings(ctx)
}

// Resolve returns the account id bound to name.
func (s *DirectoryService) Resolve(ctx context.Context, name string) (string, error) {
	snapshot, err := s.store.LoadBindings(ctx)
	if err != nil {
		return "", err
	}
	accountID, ok := snapshot.NameToAccount[strings.TrimSpace(name)]
	if !ok {
		return "", domain.ErrUnknownIdentity
	}
	return accountID, nil
}

// NameOf returns the name currently bound to accountID.
func (s *DirectoryService) NameOf(ctx context.Context, accountID string) (string, error) {
	snapshot, err := s.store.LoadBindings(ctx)
	if err != nil {
		return "", err
	}
	name, ok := snapshot.AccountToName[accountID]
	if !ok {
		return "", domain.ErrUnknownIdentity
	}
	return name, nil
}
