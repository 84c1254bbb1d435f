package ratelimit

import (
	"context"
	"time"
)

// Policy is a fixed-window limit applied to one route family.
type Policy struct {
	Name    string
	Window  time.Duration
	Max     int64
	Message string
}

var (
	Signup = Policy{
		Name:    "signup",
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Too many signup attempts. Please try again after 15 minutes.",
	}
	Login = Policy{
		Name:    "login",
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Too many login attempts. Please try again after 15 minutes.",
	}
	ForgotPassword = Policy{
		Name:    "forgot-password",
		Window:  15 * time.Minute,
		Max:     3,
		Message: "Too many password reset requests. Please try again after 15 minutes.",
	}
	ResetPassword = Policy{
		Name:    "reset-password",
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Too many password reset attempts. Please try again after 15 minutes.",
	}
	VerifyEmail = Policy{
		Name:    "verify-email",
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Too many verification attempts. Please try again after 15 minutes.",
	}
	General = Policy{
		Name:    "general",
		Window:  time.Minute,
		Max:     100,
		Message: "Too many requests. Please slow down.",
	}
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetIn   time.Duration
}

type Limiter struct {
	store Store
}

func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow counts one hit for clientKey under p. Every call counts, including
// rejected ones, so a client hammering a limited route stays limited until
// the window resets.
func (l *Limiter) Allow(ctx context.Context, p Policy, clientKey string) (Decision, error) {
	count, ttl, err := l.store.Increment(ctx, "rl:"+p.Name+":"+clientKey, p.Window)
	if err != nil {
		return Decision{}, err
	}

	remaining := p.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= p.Max,
		Limit:     p.Max,
		Remaining: remaining,
		ResetIn:   ttl,
	}, nil
}
