package models

import "slices"

// Editorial roles carried in access tokens.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleAuthor        = "author"
)

// Principal is the authenticated user acting on a request.
type Principal struct {
	UserID int64    `json:"user_id"`
	Roles  []string `json:"roles"`
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}
