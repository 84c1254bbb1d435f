package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrUnauthorized       = errors.New("unauthorized")
)

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string

	IsVerified                 bool
	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time

	ResetPasswordToken     *string
	ResetPasswordExpiresAt *time.Time

	LastLogin time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
