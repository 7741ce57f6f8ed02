package organization

import (
	"errors"
	"strings"
	"time"
)

// maxNameLength bounds organization names.
const maxNameLength = 200

// Organization is a tenant. Every task belongs to exactly one organization.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sentinel errors for organization operations.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidName          = errors.New("organization name is required")
	ErrNameTooLong          = errors.New("organization name is too long")
)

// NormaliseName trims the name and checks it is usable.
func NormaliseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if len(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
