package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	repo "github.com/daniellescalera/user-management/internal/domain/repository"
)

// TokenTypeBearer is the token_type reported by login.
const TokenTypeBearer = "bearer"

// TokenResult is the outcome of a successful login.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Principal is the authenticated caller derived from an access token.
type Principal struct {
	UserID string
	Role   entity.Role
}

// Login checks the credentials and issues an access token.
//
// Order: unknown email, lock gate, password, verification. A wrong password
// counts toward the lockout; a locked account is rejected before the password
// is checked and its counter is left alone. The gate reads a snapshot, so the
// repository re-checks the lock when recording the outcome and a request that
// raced a lock is rejected as locked too.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	if email == "" {
		return nil, &MissingFieldError{Field: "username"}
	}
	if password == "" {
		return nil, &MissingFieldError{Field: "password"}
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// burn the same CPU as a real comparison
			s.Hasher.DummyVerify(password)
			s.Metrics.LoginFailed.Add(1)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	log := s.Logger.WithField("user_id", u.ID)

	if u.IsLocked {
		s.Metrics.LoginFailed.Add(1)
		return nil, ErrAccountLocked
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		s.Metrics.LoginFailed.Add(1)
		attempt, err := s.Repo.RecordFailedLogin(ctx, u.ID, s.MaxLoginAttempts)
		if errors.Is(err, repo.ErrLocked) {
			return nil, ErrAccountLocked
		}
		if err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		if attempt.Locked {
			s.Metrics.Locked.Add(1)
			log.WithField("failed_attempts", attempt.FailedAttempts).Warn("account locked")
		}
		return nil, ErrInvalidCredentials
	}

	if !u.EmailVerified {
		s.Metrics.LoginFailed.Add(1)
		return nil, ErrEmailNotVerified
	}

	if err := s.Repo.ResetFailedLogins(ctx, u.ID); errors.Is(err, repo.ErrLocked) {
		s.Metrics.LoginFailed.Add(1)
		return nil, ErrAccountLocked
	} else if err != nil {
		log.WithError(err).Warn("reset failed logins")
	}

	token, exp, err := s.Tokens.GenerateAccessToken(u.ID, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	s.Metrics.LoginSucceeded.Add(1)
	log.Info("login succeeded")
	return &TokenResult{AccessToken: token, TokenType: TokenTypeBearer, ExpiresAt: exp}, nil
}

// Authorize verifies an access token and checks its role against allowed.
// It trusts the token alone; role changes take effect when the token expires.
func (s *Service) Authorize(token string, allowed entity.RoleSet) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.Tokens.ParseAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, claims.Role)
	}
	if !allowed.Allows(role) {
		return nil, ErrForbidden
	}
	return &Principal{UserID: claims.UserID(), Role: role}, nil
}
