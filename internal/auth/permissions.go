package auth

// Resource is an entity type subject to authorisation.
type Resource string

// Resources.
const (
	ResourceOrganization Resource = "organization"
	ResourceUser         Resource = "user"
	ResourceTask         Resource = "task"
)

// Action is an operation on a resource.
type Action string

// Actions.
const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Rule is the outcome of a decision table lookup.
type Rule int

// Rules. The zero value denies.
const (
	// RuleDeny rejects the action.
	RuleDeny Rule = iota
	// RuleAllow permits the action on any instance.
	RuleAllow
	// RuleManaged permits the action when the owner is a managed user.
	RuleManaged
	// RuleSelf permits the action when the owner is the caller.
	RuleSelf
)

// String returns the rule name.
func (r Rule) String() string {
	switch r {
	case RuleAllow:
		return "allow"
	case RuleManaged:
		return "managed"
	case RuleSelf:
		return "self"
	default:
		return "deny"
	}
}

var adminOnly = map[Role]Rule{
	RoleAdmin: RuleAllow,
}

var taskOwnership = map[Role]Rule{
	RoleAdmin:   RuleAllow,
	RoleManager: RuleManaged,
	RoleUser:    RuleSelf,
}

// decisions maps resource, action and role to a rule.
// This is the single source of truth for the authorisation model;
// any combination absent from it is denied.
var decisions = map[Resource]map[Action]map[Role]Rule{
	ResourceOrganization: {
		ActionList:   adminOnly,
		ActionRead:   adminOnly,
		ActionCreate: adminOnly,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
	},
	ResourceUser: {
		ActionList:   adminOnly,
		ActionRead:   adminOnly,
		ActionCreate: adminOnly,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
	},
	ResourceTask: {
		ActionList:   taskOwnership,
		ActionRead:   taskOwnership,
		ActionCreate: taskOwnership,
		ActionUpdate: taskOwnership,
		ActionDelete: taskOwnership,
	},
}

// RuleFor looks up the decision table. Unknown combinations are RuleDeny.
func RuleFor(resource Resource, action Action, role Role) Rule {
	return decisions[resource][action][role]
}

// Authorize decides whether id may perform action on one instance of
// resource. ownerID is the owning user of the instance: the existing
// record's owner for read, update and delete, and the requested owner for
// create. It returns nil or ErrUnauthorized. A nil id is always denied.
func Authorize(id *Identity, resource Resource, action Action, ownerID string) error {
	if id == nil {
		return ErrUnauthorized
	}

	switch RuleFor(resource, action, id.Role) {
	case RuleAllow:
		return nil
	case RuleManaged:
		if ownerID != "" && id.Manages(ownerID) {
			return nil
		}
	case RuleSelf:
		if ownerID != "" && ownerID == id.ID {
			return nil
		}
	}
	return ErrUnauthorized
}

// Scope is a storage filter for list reads. A nil *Scope is unrestricted.
type Scope struct {
	// OrganizationID restricts results to one organization when non-empty.
	OrganizationID string

	// OwnerIDs restricts results to these owners when non-nil.
	// An empty non-nil slice matches nothing.
	OwnerIDs []string
}

// matchNothing is the scope for a caller who may list but owns nothing
// reachable.
func matchNothing() *Scope {
	return &Scope{OwnerIDs: []string{}}
}

// ListScope returns the filter to apply when id lists resource.
// It returns ErrUnauthorized if id may not list resource at all.
func ListScope(id *Identity, resource Resource) (*Scope, error) {
	if id == nil {
		return nil, ErrUnauthorized
	}

	rule := RuleFor(resource, ActionList, id.Role)
	if rule == RuleDeny {
		return nil, ErrUnauthorized
	}
	if resource != ResourceTask {
		return nil, nil
	}

	switch rule {
	case RuleAllow:
		if id.OrganizationID == "" {
			return matchNothing(), nil
		}
		return &Scope{OrganizationID: id.OrganizationID}, nil
	case RuleManaged:
		if id.OrganizationID == "" {
			return matchNothing(), nil
		}
		owners := make([]string, len(id.ManagedUserIDs))
		copy(owners, id.ManagedUserIDs)
		return &Scope{OrganizationID: id.OrganizationID, OwnerIDs: owners}, nil
	default:
		return &Scope{OwnerIDs: []string{id.ID}}, nil
	}
}
