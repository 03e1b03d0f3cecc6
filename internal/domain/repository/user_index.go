package repository

//go:generate mockgen -source=user_index.go -destination=../../mock/user_index_mock.go -package=mock

import (
	"context"

	"github.com/daniellescalera/user-management/internal/domain/entity"
)

// UserDocument is the searchable projection of a user.
type UserDocument struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// NewUserDocument projects u into its search document.
func NewUserDocument(u *entity.User) UserDocument {
	return UserDocument{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
	}
}

// UserIndex is a secondary full-text index over users. It is never the source of truth.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]UserDocument, error)
}
