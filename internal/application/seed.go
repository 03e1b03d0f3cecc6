package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	repo "github.com/daniellescalera/user-management/internal/domain/repository"
	"github.com/daniellescalera/user-management/pkg/helpers"
)

// EnsureAdmin makes sure a verified ADMIN account exists for email.
// An existing account is promoted and verified; its password is left alone.
// created reports whether a new account was inserted.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (u *entity.User, created bool, err error) {
	if email == "" {
		return nil, false, &MissingFieldError{Field: "email"}
	}

	u, err = s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.promote(ctx, u)
	case !errors.Is(err, repo.ErrNotFound):
		return nil, false, fmt.Errorf("lookup admin: %w", err)
	}

	if password == "" {
		return nil, false, &MissingFieldError{Field: "password"}
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, false, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, false, hashError(err)
	}
	nickname, err := s.freeNickname(ctx, helpers.GenerateNickname(email))
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{
		Email:         email,
		Nickname:      nickname,
		PasswordHash:  hash,
		Role:          entity.RoleAdmin,
		EmailVerified: true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "source": "seed"}).Info("admin account created")
	return u, true, nil
}

func (s *Service) promote(ctx context.Context, u *entity.User) (*entity.User, bool, error) {
	if u.Role != entity.RoleAdmin {
		role := entity.RoleAdmin
		updated, err := s.Repo.Update(ctx, u.ID, repo.UserPatch{Role: &role})
		if err != nil {
			return nil, false, fmt.Errorf("promote admin: %w", err)
		}
		u = updated
	}
	if !u.EmailVerified && u.VerificationToken != "" {
		if _, err := s.Repo.ConsumeVerificationToken(ctx, u.ID, u.VerificationToken); err != nil {
			return nil, false, fmt.Errorf("verify admin: %w", err)
		}
		u.EmailVerified = true
		u.VerificationToken = ""
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "source": "seed"}).Info("admin account ensured")
	return u, false, nil
}
