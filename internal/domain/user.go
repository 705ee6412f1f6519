package domain

import "fmt"

// Role is the closed set of account types the backend issues. The router
// and the CLI switch exhaustively on it; unknown strings fail ParseRole
// instead of leaking through as stringly-typed comparisons.
type Role string

const (
	RoleDistributor Role = "Distributor"
	RoleCompany     Role = "Company"
	RoleTechnician  Role = "Technician"
	RoleAdmin       Role = "Admin"
)

// ParseRole converts a backend-supplied role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDistributor, RoleCompany, RoleTechnician, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is the identity record returned at login. Identity fields are issued
// by the backend and never edited by this client. ReferCode is optional and
// set by the backend at creation.
type User struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ReferCode string `json:"referCode,omitempty"`
}
