package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, first_name, last_name, is_verified,
	verification_token, verification_token_expires_at,
	reset_password_token, reset_password_expires_at,
	last_login, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, is_verified,
			verification_token, verification_token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsVerified,
		u.VerificationToken,
		u.VerificationTokenExpiresAt,
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// Codes are short, so two pending users may share one; only the oldest is
// consumed. The lock waits on rows held by other writers instead of skipping
// them, and the re-checked token keeps the code single use.
const markVerifiedQuery = `
	UPDATE users
	SET is_verified = TRUE,
	    verification_token = NULL,
	    verification_token_expires_at = NULL,
	    updated_at = $2
	WHERE id = (
		SELECT id FROM users
		WHERE verification_token = $1
		  AND verification_token_expires_at > $2
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE
	)
	RETURNING ` + userColumns

func (r *UserRepository) MarkVerified(ctx context.Context, code string, now time.Time) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, markVerifiedQuery, code, now))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	return u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_password_token = $2, reset_password_expires_at = $3, updated_at = NOW()
		WHERE id = $1`,
		userID, token, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (*domain.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2,
		    reset_password_token = NULL,
		    reset_password_expires_at = NULL,
		    updated_at = $3
		WHERE reset_password_token = $1
		  AND reset_password_expires_at > $3
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, token, passwordHash, now))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("reset password: %w", err)
	}
	return u, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`,
		userID, at,
	)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (r *UserRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	verification, err := tx.Exec(ctx, `
		UPDATE users
		SET verification_token = NULL, verification_token_expires_at = NULL, updated_at = $1
		WHERE verification_token IS NOT NULL AND verification_token_expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("clear verification tokens: %w", err)
	}

	reset, err := tx.Exec(ctx, `
		UPDATE users
		SET reset_password_token = NULL, reset_password_expires_at = NULL, updated_at = $1
		WHERE reset_password_token IS NOT NULL AND reset_password_expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("clear reset tokens: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return verification.RowsAffected(), reset.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsVerified,
		&u.VerificationToken,
		&u.VerificationTokenExpiresAt,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpiresAt,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
