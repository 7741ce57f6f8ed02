package task

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// maxTitleLength bounds task titles.
const maxTitleLength = 200

// Status is the progress state of a task.
type Status string

// Statuses.
const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ValidStatuses is the closed set of task statuses.
var ValidStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// IsValidStatus returns true if s is one of ValidStatuses.
func IsValidStatus(s Status) bool {
	return slices.Contains(ValidStatuses, s)
}

// Task is a unit of work owned by a user.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	UserID         string     `json:"user_id"`
	OrganizationID string     `json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Filter restricts Find results.
type Filter struct {
	// OrganizationID restricts results to one organization when non-empty.
	OrganizationID string

	// UserIDs restricts results to these owners when non-nil.
	// An empty non-nil slice matches nothing.
	UserIDs []string
}

// Sentinel errors for task operations.
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidTitle  = errors.New("task title is required")
	ErrTitleTooLong  = errors.New("task title is too long")
	ErrInvalidStatus = errors.New("invalid task status")
)

// NormaliseTitle trims the title and checks it is usable.
func NormaliseTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrInvalidTitle
	}
	if len(title) > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}
