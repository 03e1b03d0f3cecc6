package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/internal/domain/repository"
)

const testID = "5f0c7b1e-8f6e-4c1a-9d2b-3b1f2a6c9e10"

func newTestRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewUserRepository(db), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "nickname", "password_hash", "first_name", "last_name", "bio",
		"profile_picture_url", "linkedin_profile_url", "github_profile_url", "is_professional", "role",
		"email_verified", "verification_token", "failed_login_attempts", "is_locked", "created_at", "updated_at"})
}

func addUser(rows *sqlmock.Rows, id, email string, token any, created, updated time.Time) *sqlmock.Rows {
	return rows.AddRow(id, email, "nick", "hash", "Jane", "Doe", "", "", "", "", false, "AUTHENTICATED",
		false, token, 0, false, created, updated)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint}
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email,nickname,password_hash")).
		WithArgs("jane@example.com", "jane", "hash", "", "", "", "", "", "", false, "AUTHENTICATED", false, "tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "failed_login_attempts", "is_locked", "created_at", "updated_at"}).
			AddRow(testID, 0, false, now, now))

	u := &entity.User{Email: "jane@example.com", Nickname: "jane", PasswordHash: "hash",
		Role: entity.RoleAuthenticated, VerificationToken: "tok"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, testID, u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraintEmail, repository.ErrDuplicateEmail},
		{constraintNickname, repository.ErrDuplicateNickname},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			mock.ExpectQuery("INSERT INTO users").WillReturnError(uniqueViolation(tt.constraint))

			err := repo.Create(context.Background(), &entity.User{Email: "a@b.co", Role: entity.RoleAuthenticated})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_UnexpectedError(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("network down"))

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.co"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert user")
	assert.NotErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestGetByID(t *testing.T) {
	repo, mock := newTestRepo(t)
	created := time.Now().Add(-time.Hour).UTC()
	updated := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id = $1")).
		WithArgs(testID).
		WillReturnRows(addUser(userRows(), testID, "jane@example.com", nil, created, updated))

	u, err := repo.GetByID(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, entity.RoleAuthenticated, u.Role)
	assert.Empty(t, u.VerificationToken)
	assert.True(t, u.Returning())
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery("FROM users WHERE email = ").WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByID_InvalidUUIDIsNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery("FROM users WHERE id = ").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdate_BuildsPartialSet(t *testing.T) {
	repo, mock := newTestRepo(t)
	first := "Janet"
	role := entity.RoleManager
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET first_name = $1, role = $2, updated_at = now() WHERE id = $3 RETURNING")).
		WithArgs("Janet", "MANAGER", testID).
		WillReturnRows(addUser(userRows(), testID, "jane@example.com", nil, now, now))

	_, err := repo.Update(context.Background(), testID, repository.UserPatch{FirstName: &first, Role: &role})
	require.NoError(t, err)
}

func TestUpdate_DuplicateNickname(t *testing.T) {
	repo, mock := newTestRepo(t)
	nick := "taken"
	mock.ExpectQuery("UPDATE users SET nickname").WillReturnError(uniqueViolation(constraintNickname))

	_, err := repo.Update(context.Background(), testID, repository.UserPatch{Nickname: &nick})
	assert.ErrorIs(t, err, repository.ErrDuplicateNickname)
}

func TestUpdate_EmptyPatchReads(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM users WHERE id = ").
		WillReturnRows(addUser(userRows(), testID, "jane@example.com", nil, now, now))

	u, err := repo.Update(context.Background(), testID, repository.UserPatch{})
	require.NoError(t, err)
	assert.False(t, u.Returning())
}

func TestDelete(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), testID))

	mock.ExpectExec("DELETE FROM users").WithArgs(testID).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), testID), repository.ErrNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	rows := addUser(userRows(), testID, "a@example.com", nil, now, now)
	rows = addUser(rows, "6f0c7b1e-8f6e-4c1a-9d2b-3b1f2a6c9e11", "b@example.com", "tok", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC LIMIT 2 OFFSET 10")).WillReturnRows(rows)

	users, total, err := repo.List(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, users, 2)
	assert.Equal(t, "tok", users[1].VerificationToken)
}

func TestConsumeVerificationToken_Match(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTokenForUpdateSQL)).WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"email_verified", "verification_token"}).AddRow(false, "tok"))
	mock.ExpectExec(regexp.QuoteMeta("SET email_verified = TRUE, verification_token = NULL")).WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.ConsumeVerificationToken(context.Background(), testID, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsumeVerificationToken_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		verified bool
		stored   any
		token    string
	}{
		{"wrong token", false, "tok", "other"},
		{"already verified", true, nil, "tok"},
		{"token cleared", false, nil, ""},
		{"prefix only", false, "tok", "to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			mock.ExpectBegin()
			mock.ExpectQuery("FOR UPDATE").WithArgs(testID).
				WillReturnRows(sqlmock.NewRows([]string{"email_verified", "verification_token"}).AddRow(tt.verified, tt.stored))
			mock.ExpectRollback()

			ok, err := repo.ConsumeVerificationToken(context.Background(), testID, tt.token)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestConsumeVerificationToken_UnknownUser(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(testID).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	ok, err := repo.ConsumeVerificationToken(context.Background(), testID, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func attemptRows(failed int, locked, wasLocked bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"failed_login_attempts", "is_locked", "was_locked"}).AddRow(failed, locked, wasLocked)
}

func TestRecordFailedLogin(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(recordFailedLoginSQL)).
		WithArgs(testID, 3).
		WillReturnRows(attemptRows(3, true, false))

	a, err := repo.RecordFailedLogin(context.Background(), testID, 3)
	require.NoError(t, err)
	assert.Equal(t, repository.LoginAttempt{FailedAttempts: 3, Locked: true}, a)
}

func TestRecordFailedLogin_AlreadyLocked(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM (SELECT id, is_locked FROM users WHERE id = $1 FOR UPDATE) AS prev")).
		WithArgs(testID, 3).
		WillReturnRows(attemptRows(3, true, true))

	_, err := repo.RecordFailedLogin(context.Background(), testID, 3)
	assert.ErrorIs(t, err, repository.ErrLocked)
}

func TestRecordFailedLogin_UnknownUser(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(recordFailedLoginSQL)).WithArgs(testID, 3).WillReturnError(sql.ErrNoRows)

	_, err := repo.RecordFailedLogin(context.Background(), testID, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetFailedLogins(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		err  error
		want error
	}{
		{"unlocked", sqlmock.NewRows([]string{"is_locked"}).AddRow(false), nil, nil},
		{"locked", sqlmock.NewRows([]string{"is_locked"}).AddRow(true), nil, repository.ErrLocked},
		{"unknown", nil, sql.ErrNoRows, repository.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			q := mock.ExpectQuery(regexp.QuoteMeta(resetFailedLoginsSQL)).WithArgs(testID)
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}

			err := repo.ResetFailedLogins(context.Background(), testID)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCountRetention(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(countRetentionSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "returning"}).AddRow(10, 3))

	c, err := repo.CountRetention(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.RetentionCounts{Total: 10, Returning: 3}, c)
}
