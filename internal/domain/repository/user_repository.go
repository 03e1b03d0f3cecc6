package repository

//go:generate mockgen -source=user_repository.go -destination=../../mock/user_repository_mock.go -package=mock

import (
	"context"
	"errors"

	"github.com/daniellescalera/user-management/internal/domain/entity"
)

// Sentinel errors returned by UserRepository implementations.
var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateNickname = errors.New("nickname already exists")
	ErrLocked            = errors.New("account is locked")
)

// UserPatch carries the mutable fields of a user. Nil fields are left unchanged.
type UserPatch struct {
	Email              *string
	Nickname           *string
	FirstName          *string
	LastName           *string
	Bio                *string
	ProfilePictureURL  *string
	LinkedInProfileURL *string
	GitHubProfileURL   *string
	IsProfessional     *bool
	Role               *entity.Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Nickname == nil && p.FirstName == nil && p.LastName == nil &&
		p.Bio == nil && p.ProfilePictureURL == nil && p.LinkedInProfileURL == nil &&
		p.GitHubProfileURL == nil && p.IsProfessional == nil && p.Role == nil
}

// LoginAttempt is the bookkeeping state after a failed login was recorded.
type LoginAttempt struct {
	FailedAttempts int
	Locked         bool
}

// RetentionCounts holds the raw numbers behind the retention metric.
type RetentionCounts struct {
	Total     int
	Returning int
}

// UserRepository defines the interface for user-related database operations.
// Uniqueness of email and nickname is enforced by the implementation, which
// reports violations as ErrDuplicateEmail / ErrDuplicateNickname.
type UserRepository interface {
	// Create inserts u and fills its ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByNickname(ctx context.Context, nickname string) (*entity.User, error)
	// Update applies a non-empty patch and returns the stored record.
	Update(ctx context.Context, id string, patch UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*entity.User, int, error)

	// ConsumeVerificationToken atomically checks token against the stored
	// value of an unverified user and, on match, marks the email verified
	// and clears the token. It returns false when nothing was consumed.
	ConsumeVerificationToken(ctx context.Context, id, token string) (bool, error)
	// RecordFailedLogin atomically increments the failure counter and locks
	// the account once the counter reaches maxAttempts. An account that was
	// already locked is left untouched and ErrLocked is returned.
	RecordFailedLogin(ctx context.Context, id string, maxAttempts int) (LoginAttempt, error)
	// ResetFailedLogins zeroes the counter of an unlocked account. A locked
	// account is left untouched and ErrLocked is returned.
	ResetFailedLogins(ctx context.Context, id string) error

	CountRetention(ctx context.Context) (RetentionCounts, error)
}
