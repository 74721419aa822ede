package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type AccountService struct {
	api  port.AccountAPI
	gate *AccessGate
}

func NewAccountService(api port.AccountAPI, sessions SessionReader) *AccountService {
	return &AccountService{api: api, gate: NewAccessGate(sessions)}
}

// Register creates an account. The caller logs in separately.
func (s *AccountService) Register(ctx context.Context, reg domain.Registration) (domain.Profile, error) {
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return domain.Profile{}, ErrMissingCredentials
	}
	profile, err := s.api.Register(ctx, reg)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("register: %w", err)
	}
	return profile, nil
}

func (s *AccountService) Profile(ctx context.Context) (domain.Profile, error) {
	if _, err := s.gate.Require(domain.RouteAuthenticated); err != nil {
		return domain.Profile{}, err
	}
	profile, err := s.api.Me(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error) {
	sess, err := s.gate.Require(domain.RouteAuthenticated)
	if err != nil {
		return domain.Profile{}, err
	}
	profile, err := s.api.UpdateProfile(ctx, sess.UserID, update)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	sess, err := s.gate.Require(domain.RouteAuthenticated)
	if err != nil {
		return err
	}
	if oldPassword == "" || newPassword == "" {
		return ErrMissingPasswordPair
	}
	if err := s.api.ChangePassword(ctx, sess.UserID, oldPassword, newPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
