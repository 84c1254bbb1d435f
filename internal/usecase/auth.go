package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/ErlanBelekov/swinggity/internal/metrics"
	"github.com/ErlanBelekov/swinggity/internal/password"
	"github.com/ErlanBelekov/swinggity/internal/repository"
	"github.com/ErlanBelekov/swinggity/internal/token"
	"github.com/ErlanBelekov/swinggity/internal/validation"
)

const (
	verificationTTL = 24 * time.Hour
	resetTTL        = 1 * time.Hour
)

// Mailer is the subset of email.Mailer the workflow needs.
type Mailer interface {
	SendVerification(ctx context.Context, to, code string) error
	SendWelcome(ctx context.Context, to, firstName string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
	SendResetSuccess(ctx context.Context, to string) error
}

// SessionIssuer is satisfied by *token.Session.
type SessionIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type AuthUsecase struct {
	users     repository.UserRepository
	hasher    password.Hasher
	mailer    Mailer
	sessions  SessionIssuer
	clientURL string
	now       func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	hasher password.Hasher,
	mailer Mailer,
	sessions SessionIssuer,
	clientURL string,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		hasher:    hasher,
		mailer:    mailer,
		sessions:  sessions,
		clientURL: strings.TrimRight(clientURL, "/"),
		now:       time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by operations that start a session.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Signup registers an unverified user, emails a verification code and starts a session.
// A taken email returns domain.ErrEmailTaken, which callers must not reveal.
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (res *AuthResult, err error) {
	defer func() { observe("signup", err) }()

	email, err := validation.Email(in.Email)
	if err != nil {
		return nil, err
	}
	plain, err := validation.Password(in.Password)
	if err != nil {
		return nil, err
	}
	firstName, err := validation.Name("firstName", in.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := validation.Name("lastName", in.LastName)
	if err != nil {
		return nil, err
	}

	// Hashed before the lookup so taken and free emails cost the same.
	hash, err := u.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	// Advisory only: the unique index decides under concurrent signups.
	if _, err = u.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	code, err := token.VerificationCode()
	if err != nil {
		return nil, err
	}
	expiresAt := u.now().Add(verificationTTL)

	user, err := u.users.Create(ctx, &domain.User{
		Email:                      email,
		PasswordHash:               hash,
		FirstName:                  firstName,
		LastName:                   lastName,
		VerificationToken:          &code,
		VerificationTokenExpiresAt: &expiresAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err = u.mailer.SendVerification(ctx, user.Email, code); err != nil {
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	return u.startSession(user)
}

// VerifyEmail consumes a verification code. Unknown and expired codes both
// return domain.ErrTokenInvalid.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, code string) (user *domain.User, err error) {
	defer func() { observe("verify_email", err) }()

	code, err = validation.Required("code", code)
	if err != nil {
		return nil, err
	}

	user, err = u.users.MarkVerified(ctx, strings.ToLower(code), u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	if err = u.mailer.SendWelcome(ctx, user.Email, user.FirstName); err != nil {
		return nil, fmt.Errorf("send welcome email: %w", err)
	}
	return user, nil
}

// Login returns domain.ErrInvalidCredentials for a malformed email, an unknown
// account and a wrong password alike. Every path runs one bcrypt comparison.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plain string) (res *AuthResult, err error) {
	defer func() { observe("login", err) }()

	email, err := validation.Email(emailAddr)
	if err != nil {
		_ = u.hasher.Compare("", plain)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = u.hasher.Compare("", plain)
		return nil, domain.ErrInvalidCredentials
	}

	if err = u.hasher.Compare(user.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := u.now()
	if err = u.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = now

	return u.startSession(user)
}

// ForgotPassword emails a reset link when the account exists. It returns nil
// for unknown emails so callers respond identically either way.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) (err error) {
	defer func() { observe("forgot_password", err) }()

	email, err := validation.Email(emailAddr)
	if err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	resetToken, err := token.ResetToken()
	if err != nil {
		return err
	}
	if err = u.users.SetResetToken(ctx, user.ID, resetToken, u.now().Add(resetTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := u.clientURL + "/reset-password/" + resetToken
	if err = u.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token once. Unknown, expired and already
// used tokens all return domain.ErrTokenInvalid.
func (u *AuthUsecase) ResetPassword(ctx context.Context, resetToken, newPassword string) (err error) {
	defer func() { observe("reset_password", err) }()

	resetToken, err = validation.Required("token", resetToken)
	if err != nil {
		return err
	}
	plain, err := validation.Password(newPassword)
	if err != nil {
		return err
	}

	hash, err := u.hasher.Hash(plain)
	if err != nil {
		return err
	}

	user, err := u.users.ResetPassword(ctx, resetToken, hash, u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}

	if err = u.mailer.SendResetSuccess(ctx, user.Email); err != nil {
		return fmt.Errorf("send reset success email: %w", err)
	}
	return nil
}

// CheckAuth loads the user behind an already verified session.
func (u *AuthUsecase) CheckAuth(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (u *AuthUsecase) startSession(user *domain.User) (*AuthResult, error) {
	signed, expiresAt, err := u.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: signed, ExpiresAt: expiresAt}, nil
}

func observe(operation string, err error) {
	outcome := "success"
	var vErr *validation.Error
	switch {
	case err == nil:
	case errors.As(err, &vErr),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.AuthOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
