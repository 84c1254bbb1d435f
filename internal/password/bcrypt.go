package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 10

var ErrMismatch = errors.New("password does not match")

type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// Bcrypt hashes with a per-hash random salt. Inputs longer than 72 bytes are
// rejected by bcrypt itself and surface as a Hash error.
type Bcrypt struct {
	cost  int
	dummy []byte
}

func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("swinggity-timing-equalizer"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	return &Bcrypt{cost: cost, dummy: dummy}, nil
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Compare returns ErrMismatch for a wrong password. An empty hash is compared
// against a dummy hash of the same cost so the caller spends the same time
// whether or not an account exists.
func (b *Bcrypt) Compare(hash, plain string) error {
	target := []byte(hash)
	if hash == "" {
		target = b.dummy
	}
	err := bcrypt.CompareHashAndPassword(target, []byte(plain))
	if hash == "" {
		return ErrMismatch
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
