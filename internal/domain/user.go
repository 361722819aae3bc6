package domain

import "time"

// Role determines a user's baseline access level.
type Role string

const (
	// RoleAdmin implicitly holds every capability.
	RoleAdmin Role = "admin"
	// RoleTeam is a branch user whose access is limited to the
	// capabilities explicitly granted to them.
	RoleTeam Role = "team"
)

// Capability is a named grant allowing a class of actions.
type Capability string

const (
	CapabilityTransferProducts Capability = "transfer_products"
	CapabilityManageProducts   Capability = "manage_products"
	CapabilityManageBranches   Capability = "manage_branches"
)

// User is an authenticated principal.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Capabilities []Capability
	CreatedAt    time.Time
}

// HasCapability reports whether the user may perform actions gated by cap.
// Admins hold all capabilities.
func (u User) HasCapability(cap Capability) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, c := range u.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
