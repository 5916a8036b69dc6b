package users

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if err := checkPasswordStrength(req.Password); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, strings.ToLower(strings.TrimSpace(req.Email)), string(hash), req.IsAdmin)
}

// Update changes flags or resets the password. Demoting or deactivating the
// last active admin is rejected so the system never locks itself out.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	if req.Password != nil {
		if err := checkPasswordStrength(*req.Password); err != nil {
			return User{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
			return User{}, err
		}
	}

	if req.IsAdmin != nil || req.IsActive != nil {
		losesAdmin := current.IsAdmin && current.IsActive &&
			((req.IsAdmin != nil && !*req.IsAdmin) || (req.IsActive != nil && !*req.IsActive))
		if losesAdmin {
			admins, err := s.repo.CountAdmins(ctx)
			if err != nil {
				return User{}, err
			}
			if admins <= 1 {
				return User{}, fmt.Errorf("%w: cannot remove the last active admin", httpx.ErrValidation)
			}
		}
		if err := s.repo.UpdateFlags(ctx, id, req.IsAdmin, req.IsActive); err != nil {
			return User{}, err
		}
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.IsAdmin && current.IsActive {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return fmt.Errorf("%w: cannot delete the last active admin", httpx.ErrValidation)
		}
	}
	return s.repo.Delete(ctx, id)
}

func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must have at least 8 characters", httpx.ErrValidation)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must mix letters and digits", httpx.ErrValidation)
	}
	return nil
}
