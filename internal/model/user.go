package model

// User is an authenticated person, resolved from the PIN directory.
type User struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Roles.
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDriver
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  2,
		RoleDriver: 1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}
