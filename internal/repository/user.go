package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
)

// UserRepository is the credential store. The usecase depends on this interface,
// so tests can swap in a fake and the backing database can change without touching it.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken when the unique
	// index on email rejects the row; the index is authoritative, any prior
	// existence check is advisory only.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// MarkVerified atomically consumes an unexpired verification code, clearing
	// it and flagging the owner as verified. Returns domain.ErrTokenInvalid when
	// no user holds the code or it expired at or before now.
	MarkVerified(ctx context.Context, code string, now time.Time) (*domain.User, error)

	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// ResetPassword atomically consumes an unexpired reset token and stores the new hash.
	// Returns domain.ErrTokenInvalid when the token is unknown, expired or already used.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (*domain.User, error)

	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	// ClearExpiredTokens nulls verification and reset tokens whose expiry has passed.
	ClearExpiredTokens(ctx context.Context, now time.Time) (verification, reset int64, err error)
}
