package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tripnest/tripnest/internal/devapi/domain"
	"github.com/tripnest/tripnest/internal/devapi/store"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/idx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

var ErrSeedIncomplete = errors.New("seed admin email and password are required")

// AdminSeed describes the platform admin created on an empty database.
type AdminSeed struct {
	Email    string
	Name     string
	Password string
}

// SeedService creates the first platform admin so that invitations can be
// sent at all.
type SeedService struct {
	Store store.Store
}

// IsSeeded reports whether any account exists.
func (s *SeedService) IsSeeded(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// EnsureAdmin creates the admin described by seed when the user table is
// empty. It reports whether an account was created.
func (s *SeedService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	l := slogx.FromContext(ctx)

	if seeded, err := s.IsSeeded(ctx); err != nil || seeded {
		return false, err
	}
	if seed.Email == "" || seed.Password == "" {
		return false, ErrSeedIncomplete
	}
	if err := identity.CheckPassword(seed.Password); err != nil {
		return false, err
	}

	hash, err := cryptox.HashPassword(seed.Password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return false, err
	}

	name := seed.Name
	if name == "" {
		name = "Platform Admin"
	}

	now := time.Now().UTC()
	admin := domain.Account{
		User: identity.User{
			ID:        idx.NewWithPrefix(idx.PrefixUser).String(),
			Name:      name,
			Email:     identity.NormalizeEmail(seed.Email),
			Role:      identity.RolePlatformAdmin,
			Status:    identity.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return false, err
	}

	l.Info("seeded platform admin", slog.String("user_id", admin.ID), slog.String("email", admin.Email))
	return true, nil
}
