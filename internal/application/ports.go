package application

//go:generate mockgen -source=ports.go -destination=../mock/ports_mock.go -package=mock

import (
	"context"
	"io"
	"time"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/pkg/helpers"
)

// Notifier delivers account notifications.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, u *entity.User, token string) error
}

// AvatarStore persists profile pictures and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error)
}

// PasswordHasher is satisfied by helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	DummyVerify(plain string)
}

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, time.Time, error)
	ParseAccessToken(token string) (*helpers.Claims, error)
}
