package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != DefaultPasswordCost {
		t.Errorf("cost = %d, want %d", cost, DefaultPasswordCost)
	}

	ok, err := VerifyPassword("correct-horse-battery-staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("VerifyPassword() should return true for the correct password")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := NewHasher(testCost, 1).Hash(t.Context(), "right-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if ok {
		t.Error("VerifyPassword() should return false for a wrong password")
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	h := NewHasher(testCost, 1)

	a, _ := h.Hash(t.Context(), "same-password") //nolint:errcheck // compared below
	b, _ := h.Hash(t.Context(), "same-password") //nolint:errcheck // compared below
	if a == b {
		t.Error("hashing the same password twice should produce different hashes")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		ok, err := VerifyPassword("anything", hash)
		if ok {
			t.Errorf("VerifyPassword(%q) = true, want false", hash)
		}
		if !errors.Is(err, ErrHashingFailure) {
			t.Errorf("VerifyPassword(%q) error = %v, want ErrHashingFailure", hash, err)
		}
	}
}

func TestHasher_LongPassword(t *testing.T) {
	h := NewHasher(testCost, 1)
	long := strings.Repeat("x", 100)
	sameHead := long[:MaxPasswordBytes] + strings.Repeat("y", 28)

	hash, err := h.Hash(t.Context(), long)
	if err != nil {
		t.Fatalf("Hash(100 bytes) error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"same password", long, true},
		{"same first 72 bytes", sameHead, false},
		{"truncated to 72 bytes", long[:MaxPasswordBytes], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(t.Context(), tt.password, hash)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Verify() = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestHasher_InvalidCost(t *testing.T) {
	_, err := NewHasher(bcrypt.MaxCost+1, 1).Hash(t.Context(), "password")
	if !errors.Is(err, ErrHashingFailure) {
		t.Errorf("Hash() error = %v, want ErrHashingFailure", err)
	}
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(testCost, 2)

	hash, err := h.Hash(t.Context(), "secret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := h.Verify(t.Context(), "secret", hash)
	if err != nil || !ok {
		t.Errorf("Verify(correct) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = h.Verify(t.Context(), "other", hash)
	if err != nil || ok {
		t.Errorf("Verify(wrong) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestHasher_WaitHonoursContext(t *testing.T) {
	h := NewHasher(testCost, 1)

	// Hold the only slot so the next caller has to wait.
	if err := h.sem.Acquire(t.Context(), 1); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := h.Hash(ctx, "password"); !errors.Is(err, context.Canceled) {
		t.Errorf("Hash() error = %v, want context.Canceled", err)
	}
	if _, err := h.Verify(ctx, "password", "hash"); !errors.Is(err, context.Canceled) {
		t.Errorf("Verify() error = %v, want context.Canceled", err)
	}
}
