package models

import (
	"fmt"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts s into a Role, rejecting anything outside the enum.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", common.NewValidationError(fmt.Sprintf("invalid role %q: must be %q or %q", s, RoleUser, RoleAdmin))
	}
	return r, nil
}
