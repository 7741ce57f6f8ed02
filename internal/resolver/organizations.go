package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
	"github.com/nerrad567/taskhub-core/internal/organization"
)

// Organizations lists every organization. Admin only.
func (r *Resolver) Organizations(ctx context.Context) ([]organization.Organization, error) {
	if _, err := auth.ListScope(auth.IdentityFromContext(ctx), auth.ResourceOrganization); err != nil {
		return nil, err
	}

	orgs, err := r.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	return orgs, nil
}

// Organization returns one organization. Admin only.
func (r *Resolver) Organization(ctx context.Context, id string) (*organization.Organization, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ResourceOrganization, auth.ActionRead, ""); err != nil {
		return nil, err
	}

	org, err := r.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, organization.ErrOrganizationNotFound, "getting organization")
	}
	return org, nil
}

// CreateOrganization creates an organization named name. Admin only.
func (r *Resolver) CreateOrganization(ctx context.Context, name string) (*organization.Organization, error) {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceOrganization, auth.ActionCreate, ""); err != nil {
		return nil, err
	}

	name, err := normaliseOrgName(name)
	if err != nil {
		return nil, err
	}

	org := &organization.Organization{Name: name}
	if err := r.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	r.logger.Info("organization created", "organization_id", org.ID, "created_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeCreated,
		Entity:         events.EntityOrganization,
		ID:             org.ID,
		OrganizationID: org.ID,
		ActorID:        id.ID,
	})
	return org, nil
}

// UpdateOrganization renames an organization. Admin only.
func (r *Resolver) UpdateOrganization(ctx context.Context, orgID, name string) (*organization.Organization, error) {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceOrganization, auth.ActionUpdate, ""); err != nil {
		return nil, err
	}

	name, err := normaliseOrgName(name)
	if err != nil {
		return nil, err
	}

	org, err := r.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, mapNotFound(err, organization.ErrOrganizationNotFound, "getting organization")
	}

	org.Name = name
	if err := r.orgs.Update(ctx, org); err != nil {
		return nil, mapNotFound(err, organization.ErrOrganizationNotFound, "updating organization")
	}

	r.logger.Info("organization updated", "organization_id", org.ID, "updated_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeUpdated,
		Entity:         events.EntityOrganization,
		ID:             org.ID,
		OrganizationID: org.ID,
		ActorID:        id.ID,
	})
	return org, nil
}

// DeleteOrganization removes an organization and its tasks. Its users
// remain without an organization. Admin only.
func (r *Resolver) DeleteOrganization(ctx context.Context, orgID string) error {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceOrganization, auth.ActionDelete, ""); err != nil {
		return err
	}

	if err := r.orgs.Delete(ctx, orgID); err != nil {
		return mapNotFound(err, organization.ErrOrganizationNotFound, "deleting organization")
	}

	r.logger.Info("organization deleted", "organization_id", orgID, "deleted_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeDeleted,
		Entity:         events.EntityOrganization,
		ID:             orgID,
		OrganizationID: orgID,
		ActorID:        id.ID,
	})
	return nil
}

func normaliseOrgName(name string) (string, error) {
	name, err := organization.NormaliseName(name)
	if err != nil {
		if errors.Is(err, organization.ErrNameTooLong) {
			return "", invalid("organization name is too long")
		}
		return "", invalid("organization name is required")
	}
	return name, nil
}

// requireOrganization checks that orgID names an existing organization.
func (r *Resolver) requireOrganization(ctx context.Context, orgID string) error {
	if _, err := r.orgs.GetByID(ctx, orgID); err != nil {
		if errors.Is(err, organization.ErrOrganizationNotFound) {
			return invalid("unknown organization %q", orgID)
		}
		return fmt.Errorf("getting organization: %w", err)
	}
	return nil
}
