package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellescalera/user-management/internal/domain/entity"
)

func TestEnsureAdmin_CreatesVerifiedAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, created, err := f.svc.EnsureAdmin(ctx, "root@example.com", "Secret123!")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Equal(t, entity.StateVerified, u.State())

	res, err := f.svc.Login(ctx, "root@example.com", "Secret123!")
	require.NoError(t, err)
	p, err := f.svc.Authorize(res.AccessToken, entity.AdminOnly)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)

	_, created, err = f.svc.EnsureAdmin(ctx, "root@example.com", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	_, err = f.svc.Login(ctx, "root@example.com", "Secret123!")
	assert.NoError(t, err)
}

func TestEnsureAdmin_PromotesExistingAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	u, created, err := f.svc.EnsureAdmin(ctx, "jane@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, reg.ID, u.ID)

	stored, err := f.repo.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, stored.Role)
	assert.True(t, stored.EmailVerified)
	assert.Empty(t, stored.VerificationToken)
}

func TestEnsureAdmin_RequiresCredentials(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.EnsureAdmin(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingField)
	_, _, err = f.svc.EnsureAdmin(context.Background(), "new@example.com", "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestEnsureAdmin_RejectsOverlongPassword(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.EnsureAdmin(context.Background(), "root@example.com", strings.Repeat("x", 100))
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.repo.GetByEmail(context.Background(), "root@example.com")
	assert.Error(t, err)
}
