package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/daniellescalera/user-management/internal/domain/repository"
)

// constraint names from db/migrations
const (
	constraintEmail    = "users_email_key"
	constraintNickname = "users_nickname_key"
)

// translate maps driver errors onto repository sentinels and wraps the rest with op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case constraintNickname:
				return repository.ErrDuplicateNickname
			case constraintEmail:
				return repository.ErrDuplicateEmail
			}
			return fmt.Errorf("%s: unique violation on %q: %w", op, pgErr.ConstraintName, err)
		case pgerrcode.InvalidTextRepresentation:
			// non-uuid id literals cannot match any row
			return repository.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
