package domain

import "strings"

// Role is the closed set of account roles
type Role string

const (
	RoleHost  Role = "HOST"  // Publishes listings
	RoleGuest Role = "GUEST" // Books listings
)

// ParseRole converts user input into a Role. An empty value means GUEST.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return RoleGuest, nil
	case RoleHost:
		return RoleHost, nil
	case RoleGuest:
		return RoleGuest, nil
	}
	return "", NewError(ErrValidation, "Role must be HOST or GUEST")
}

// CanPublish reports whether the role may create listings
func (r Role) CanPublish() bool {
	switch r {
	case RoleHost:
		return true
	case RoleGuest:
		return false
	}
	return false
}

// CanBook reports whether the role may create reservations
func (r Role) CanBook() bool {
	switch r {
	case RoleGuest:
		return true
	case RoleHost:
		return false
	}
	return false
}
