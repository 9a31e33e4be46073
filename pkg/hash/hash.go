package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptHash is returned by Verify when the stored hash was not produced by bcrypt.
var ErrCorruptHash = errors.New("hash: corrupt password hash")

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) (bool, error)
}

// Bcrypt stores the cost inside every produced hash, so changing Cost never
// invalidates hashes created with an older value.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b Bcrypt) Hash(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost())
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return string(hashbytes), nil
}

// Verify reports false without an error for a wrong password.
func (b Bcrypt) Verify(password, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptHash, err)
	}
}
