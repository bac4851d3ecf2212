package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/dbx"
	"github.com/konasal/konasal-backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, reset_token, reset_token_expires_at, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.ResetToken, &user.ResetTokenExpiresAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// Create inserts user and fills in the generated id and creation time.
// A taken email yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (name, email, password_hash, role)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SetResetToken stores a reset token, replacing whatever token the user had.
// Both columns are written together.
func (r *PostgresRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query :=
		`UPDATE users SET reset_token = $2, reset_token_expires_at = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res, common.ErrorNotFound)
}

// GetUserByResetToken finds the user holding token if it is still valid at
// now. Unknown and expired tokens are both reported as
// common.ErrInvalidResetToken.
func (r *PostgresRepository) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE reset_token = $1 AND reset_token_expires_at > $2
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, token, now))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrInvalidResetToken
	}
	return user, err
}

// ResetPassword sets a new hash and clears the reset token, but only while the
// same token is still stored and unexpired. Losing a race against another
// reset yields common.ErrInvalidResetToken.
func (r *PostgresRepository) ResetPassword(ctx context.Context, userID, token string, now time.Time, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $4, reset_token = NULL, reset_token_expires_at = NULL
		 WHERE id = $1 AND reset_token = $2 AND reset_token_expires_at > $3
		 `

	res, err := r.db.ExecContext(ctx, query, userID, token, now, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res, common.ErrInvalidResetToken)
}

func expectOneRow(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}
