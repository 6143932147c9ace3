// Package authz holds the caller identity used for every data access and the
// query scopes that restrict rows to what that caller may see.
package authz

type Role string

const (
	RoleNone      Role = ""
	RoleOrganizer Role = "organizer"
	RoleAgent     Role = "agent"
)

// Viewer is the authenticated caller resolved to a role and an organization.
type Viewer struct {
	UserID   uint64
	Username string
	Email    string
	Role     Role

	// OrganizationID is the organizer's own profile ID, or the organization
	// the agent belongs to.
	OrganizationID uint64

	// AgentID is set only for RoleAgent.
	AgentID uint64
}

func (v Viewer) IsOrganizer() bool {
	return v.Role == RoleOrganizer && v.OrganizationID != 0
}

func (v Viewer) IsAgent() bool {
	return v.Role == RoleAgent && v.OrganizationID != 0 && v.AgentID != 0
}
