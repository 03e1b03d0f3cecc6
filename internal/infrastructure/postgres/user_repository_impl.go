package postgres

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/internal/domain/repository"
)

const userColumns = "id, email, nickname, password_hash, first_name, last_name, bio, " +
	"profile_picture_url, linkedin_profile_url, github_profile_url, is_professional, role, " +
	"email_verified, verification_token, failed_login_attempts, is_locked, created_at, updated_at"

const (
	// prev holds the row lock, so prev.is_locked is the state this attempt saw.
	recordFailedLoginSQL = `UPDATE users AS u
		SET failed_login_attempts = CASE WHEN prev.is_locked THEN u.failed_login_attempts ELSE u.failed_login_attempts + 1 END,
		    is_locked = prev.is_locked OR u.failed_login_attempts + 1 >= $2,
		    updated_at = CASE WHEN prev.is_locked THEN u.updated_at ELSE now() END
		FROM (SELECT id, is_locked FROM users WHERE id = $1 FOR UPDATE) AS prev
		WHERE u.id = prev.id
		RETURNING u.failed_login_attempts, u.is_locked, prev.is_locked`

	resetFailedLoginsSQL = `UPDATE users AS u
		SET failed_login_attempts = CASE WHEN prev.is_locked THEN u.failed_login_attempts ELSE 0 END,
		    updated_at = CASE WHEN prev.is_locked OR u.failed_login_attempts = 0 THEN u.updated_at ELSE now() END
		FROM (SELECT id, is_locked FROM users WHERE id = $1 FOR UPDATE) AS prev
		WHERE u.id = prev.id
		RETURNING prev.is_locked`

	selectTokenForUpdateSQL = `SELECT email_verified, verification_token FROM users WHERE id = $1 FOR UPDATE`

	markVerifiedSQL = `UPDATE users
		SET email_verified = TRUE, verification_token = NULL, updated_at = now()
		WHERE id = $1`

	countRetentionSQL = `SELECT COUNT(*), COUNT(*) FILTER (WHERE updated_at <> created_at) FROM users`
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// UserRepository is the Postgres implementation of repository.UserRepository.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		u     entity.User
		role  string
		token sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.Nickname, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Bio,
		&u.ProfilePictureURL, &u.LinkedInProfileURL, &u.GitHubProfileURL, &u.IsProfessional, &role,
		&u.EmailVerified, &token, &u.FailedLoginAttempts, &u.IsLocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	u.VerificationToken = token.String
	return &u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query, args, err := psql.Insert("users").
		Columns("email", "nickname", "password_hash", "first_name", "last_name", "bio",
			"profile_picture_url", "linkedin_profile_url", "github_profile_url", "is_professional",
			"role", "email_verified", "verification_token").
		Values(u.Email, u.Nickname, u.PasswordHash, u.FirstName, u.LastName, u.Bio,
			u.ProfilePictureURL, u.LinkedInProfileURL, u.GitHubProfileURL, u.IsProfessional,
			string(u.Role), u.EmailVerified, nullable(u.VerificationToken)).
		Suffix("RETURNING id, failed_login_attempts, is_locked, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.FailedLoginAttempts, &u.IsLocked, &u.CreatedAt, &u.UpdatedAt)
	return translate("insert user", err)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	query, args, err := psql.Select(userColumns).From("users").Where(sq.Eq{column: value}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate("select user by "+column, err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	return r.getBy(ctx, "nickname", nickname)
}

func (r *UserRepository) Update(ctx context.Context, id string, p repository.UserPatch) (*entity.User, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	b := psql.Update("users")
	if p.Email != nil {
		b = b.Set("email", *p.Email)
	}
	if p.Nickname != nil {
		b = b.Set("nickname", *p.Nickname)
	}
	if p.FirstName != nil {
		b = b.Set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		b = b.Set("last_name", *p.LastName)
	}
	if p.Bio != nil {
		b = b.Set("bio", *p.Bio)
	}
	if p.ProfilePictureURL != nil {
		b = b.Set("profile_picture_url", *p.ProfilePictureURL)
	}
	if p.LinkedInProfileURL != nil {
		b = b.Set("linkedin_profile_url", *p.LinkedInProfileURL)
	}
	if p.GitHubProfileURL != nil {
		b = b.Set("github_profile_url", *p.GitHubProfileURL)
	}
	if p.IsProfessional != nil {
		b = b.Set("is_professional", *p.IsProfessional)
	}
	if p.Role != nil {
		b = b.Set("role", string(*p.Role))
	}
	query, args, err := b.Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate("update user", err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete user: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate("delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, translate("count users", err)
	}
	query, args, err := psql.Select(userColumns).From("users").
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translate("list users", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*entity.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, id, token string) (ok bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin verify tx: %w", err)
	}
	defer func() {
		if !ok {
			_ = tx.Rollback()
		}
	}()

	var (
		verified bool
		stored   sql.NullString
	)
	if err := tx.QueryRowContext(ctx, selectTokenForUpdateSQL, id).Scan(&verified, &stored); err != nil {
		if err = translate("lock user for verification", err); errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if verified || !stored.Valid || subtle.ConstantTimeCompare([]byte(stored.String), []byte(token)) != 1 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, markVerifiedSQL, id); err != nil {
		return false, translate("mark email verified", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit verify tx: %w", err)
	}
	return true, nil
}

func (r *UserRepository) RecordFailedLogin(ctx context.Context, id string, maxAttempts int) (repository.LoginAttempt, error) {
	var (
		a         repository.LoginAttempt
		wasLocked bool
	)
	err := r.db.QueryRowContext(ctx, recordFailedLoginSQL, id, maxAttempts).Scan(&a.FailedAttempts, &a.Locked, &wasLocked)
	if err != nil {
		return repository.LoginAttempt{}, translate("record failed login", err)
	}
	if wasLocked {
		return repository.LoginAttempt{}, repository.ErrLocked
	}
	return a, nil
}

func (r *UserRepository) ResetFailedLogins(ctx context.Context, id string) error {
	var locked bool
	if err := r.db.QueryRowContext(ctx, resetFailedLoginsSQL, id).Scan(&locked); err != nil {
		return translate("reset failed logins", err)
	}
	if locked {
		return repository.ErrLocked
	}
	return nil
}

func (r *UserRepository) CountRetention(ctx context.Context) (repository.RetentionCounts, error) {
	var c repository.RetentionCounts
	if err := r.db.QueryRowContext(ctx, countRetentionSQL).Scan(&c.Total, &c.Returning); err != nil {
		return repository.RetentionCounts{}, translate("count retention", err)
	}
	return c, nil
}
