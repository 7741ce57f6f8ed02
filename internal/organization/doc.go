// Package organization holds the tenant entity of TaskHub Core and its
// SQLite persistence.
//
// Organizations carry no behaviour of their own. Users and tasks reference
// them; deleting an organization removes its tasks and un-assigns its users
// through foreign-key actions in the schema.
package organization
