package entity

import (
	"time"
)

// AccountState is the lifecycle state of a user as seen by the login flow.
type AccountState string

const (
	StatePendingVerification AccountState = "PENDING_VERIFICATION"
	StateVerified            AccountState = "VERIFIED"
	StateLocked              AccountState = "LOCKED"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in PasswordHash.
// VerificationToken is empty once the email has been verified.
type User struct {
	ID                  string
	Email               string
	Nickname            string
	PasswordHash        string
	FirstName           string
	LastName            string
	Bio                 string
	ProfilePictureURL   string
	LinkedInProfileURL  string
	GitHubProfileURL    string
	IsProfessional      bool
	Role                Role
	EmailVerified       bool
	VerificationToken   string
	FailedLoginAttempts int
	IsLocked            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// State derives the account state. LOCKED wins over verification.
func (u *User) State() AccountState {
	switch {
	case u.IsLocked:
		return StateLocked
	case u.EmailVerified:
		return StateVerified
	default:
		return StatePendingVerification
	}
}

// Returning reports whether the record was mutated after creation.
func (u *User) Returning() bool {
	return !u.UpdatedAt.Equal(u.CreatedAt)
}
