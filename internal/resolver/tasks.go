package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
	"github.com/nerrad567/taskhub-core/internal/task"
)

// CreateTaskInput is the input of CreateTask. UserID defaults to the
// caller, Status to Pending and OrganizationID to the owner's organization.
type CreateTaskInput struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Status         task.Status `json:"status"`
	DueDate        *time.Time  `json:"due_date"`
	UserID         string      `json:"user_id"`
	OrganizationID string      `json:"organization_id"`
}

// UpdateTaskInput is the input of UpdateTask. Nil fields are unchanged.
type UpdateTaskInput struct {
	Title          *string      `json:"title,omitempty"`
	Description    *string      `json:"description,omitempty"`
	Status         *task.Status `json:"status,omitempty"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	UserID         *string      `json:"user_id,omitempty"`
	OrganizationID *string      `json:"organization_id,omitempty"`
}

// Tasks lists the tasks visible to the caller: the Admin's organization,
// a Manager's managed users within its organization, or a User's own.
func (r *Resolver) Tasks(ctx context.Context) ([]task.Task, error) {
	scope, err := auth.ListScope(auth.IdentityFromContext(ctx), auth.ResourceTask)
	if err != nil {
		return nil, err
	}

	var filter task.Filter
	if scope != nil {
		filter = task.Filter{OrganizationID: scope.OrganizationID, UserIDs: scope.OwnerIDs}
	}

	tasks, err := r.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Task returns one task if the caller may read it.
func (r *Resolver) Task(ctx context.Context, taskID string) (*task.Task, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	t, err := r.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapNotFound(err, task.ErrTaskNotFound, "getting task")
	}
	if err := auth.Authorize(id, auth.ResourceTask, auth.ActionRead, t.UserID); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTask creates a task owned by in.UserID. The caller must be allowed
// to create tasks for that owner.
func (r *Resolver) CreateTask(ctx context.Context, in CreateTaskInput) (*task.Task, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	ownerID := strings.TrimSpace(in.UserID)
	if ownerID == "" {
		ownerID = id.ID
	}
	if err := auth.Authorize(id, auth.ResourceTask, auth.ActionCreate, ownerID); err != nil {
		return nil, err
	}

	title, err := normaliseTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = task.StatusPending
	}
	if !task.IsValidStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	orgID, err := r.taskOrganization(ctx, ownerID, strings.TrimSpace(in.OrganizationID))
	if err != nil {
		return nil, err
	}

	t := &task.Task{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Status:         status,
		DueDate:        in.DueDate,
		UserID:         ownerID,
		OrganizationID: orgID,
	}
	if err := r.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	r.logger.Info("task created", "task_id", t.ID, "user_id", t.UserID, "created_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeCreated,
		Entity:         events.EntityTask,
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		ActorID:        id.ID,
	})
	return t, nil
}

// UpdateTask changes the supplied fields of a task. The caller must be
// allowed to update the task's current owner; a new owner is not
// re-checked. Changing the owner moves the task to the new owner's
// organization.
func (r *Resolver) UpdateTask(ctx context.Context, taskID string, in UpdateTaskInput) (*task.Task, error) { //nolint:gocognit,gocyclo // field patching with per-field validation
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	t, err := r.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapNotFound(err, task.ErrTaskNotFound, "getting task")
	}
	if err := auth.Authorize(id, auth.ResourceTask, auth.ActionUpdate, t.UserID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if t.Title, err = normaliseTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !task.IsValidStatus(*in.Status) {
			return nil, invalid("unknown status %q", *in.Status)
		}
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}

	if in.UserID != nil || in.OrganizationID != nil {
		ownerID := t.UserID
		if in.UserID != nil {
			ownerID = strings.TrimSpace(*in.UserID)
			if ownerID == "" {
				return nil, invalid("user_id cannot be empty")
			}
		}
		var requestedOrg string
		if in.OrganizationID != nil {
			requestedOrg = strings.TrimSpace(*in.OrganizationID)
		}
		orgID, err := r.taskOrganization(ctx, ownerID, requestedOrg)
		if err != nil {
			return nil, err
		}
		t.UserID = ownerID
		t.OrganizationID = orgID
	}

	if err := r.tasks.Update(ctx, t); err != nil {
		return nil, mapNotFound(err, task.ErrTaskNotFound, "updating task")
	}

	r.logger.Info("task updated", "task_id", t.ID, "updated_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeUpdated,
		Entity:         events.EntityTask,
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		ActorID:        id.ID,
	})
	return t, nil
}

// DeleteTask removes a task if the caller may delete it.
func (r *Resolver) DeleteTask(ctx context.Context, taskID string) error {
	id, err := caller(ctx)
	if err != nil {
		return err
	}

	t, err := r.tasks.GetByID(ctx, taskID)
	if err != nil {
		return mapNotFound(err, task.ErrTaskNotFound, "getting task")
	}
	if err := auth.Authorize(id, auth.ResourceTask, auth.ActionDelete, t.UserID); err != nil {
		return err
	}

	if err := r.tasks.Delete(ctx, taskID); err != nil {
		return mapNotFound(err, task.ErrTaskNotFound, "deleting task")
	}

	r.logger.Info("task deleted", "task_id", taskID, "deleted_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeDeleted,
		Entity:         events.EntityTask,
		ID:             taskID,
		OrganizationID: t.OrganizationID,
		ActorID:        id.ID,
	})
	return nil
}

// taskOrganization returns the organization a task owned by ownerID lives
// in. It is always the owner's organization; a requested organization that
// differs is rejected.
func (r *Resolver) taskOrganization(ctx context.Context, ownerID, requested string) (string, error) {
	owner, err := r.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return "", invalid("unknown user %q", ownerID)
		}
		return "", fmt.Errorf("getting task owner: %w", err)
	}
	if owner.OrganizationID == "" {
		return "", invalid("user %q has no organization", ownerID)
	}
	if requested != "" && requested != owner.OrganizationID {
		return "", invalid("organization %q is not the owner's organization", requested)
	}
	return owner.OrganizationID, nil
}

func normaliseTitle(title string) (string, error) {
	title, err := task.NormaliseTitle(title)
	if err != nil {
		if errors.Is(err, task.ErrTitleTooLong) {
			return "", invalid("title is too long")
		}
		return "", invalid("title is required")
	}
	return title, nil
}
