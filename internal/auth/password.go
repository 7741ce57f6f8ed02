package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultPasswordCost is the bcrypt work factor for stored passwords.
const DefaultPasswordCost = 12

// MaxPasswordBytes is the longest password bcrypt accepts. Longer input is
// reduced with SHA-256 before it reaches bcrypt.
const MaxPasswordBytes = 72

// bcryptInput returns the bytes handed to bcrypt for password.
func bcryptInput(password string) []byte {
	if len(password) <= MaxPasswordBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword hashes a plaintext password with bcrypt at DefaultPasswordCost.
func HashPassword(password string) (string, error) {
	return hashWithCost(password, DefaultPasswordCost)
}

// VerifyPassword checks a plaintext password against a bcrypt hash.
// A mismatch is (false, nil); any other failure, including an unparseable
// hash, is ErrHashingFailure.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrHashingFailure, err)
	}
}

func hashWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingFailure, err)
	}
	return string(hash), nil
}

// Hasher runs bcrypt with a configurable cost, allowing at most a fixed
// number of hash operations at once.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher returns a Hasher. cost 0 means DefaultPasswordCost and
// maxConcurrent 0 means GOMAXPROCS.
func NewHasher(cost, maxConcurrent int) *Hasher {
	if cost == 0 {
		cost = DefaultPasswordCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Hash hashes password once a slot is free. It returns ctx.Err() if the
// context ends while waiting.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	return hashWithCost(password, h.cost)
}

// Verify compares password against hash once a slot is free.
func (h *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	return VerifyPassword(password, hash)
}
