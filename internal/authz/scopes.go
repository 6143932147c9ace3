package authz

import "gorm.io/gorm"

func deny(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// LeadsVisibleTo restricts a leads query to the rows the viewer may read or
// modify. Organizers see their whole organization, agents only the leads
// assigned to them.
func LeadsVisibleTo(v Viewer) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case v.IsOrganizer():
			return db.Where("leads.organization_id = ?", v.OrganizationID)
		case v.IsAgent():
			return db.Where("leads.organization_id = ? AND leads.agent_id = ?", v.OrganizationID, v.AgentID)
		default:
			return deny(db)
		}
	}
}

// CategoriesVisibleTo restricts a categories query to the viewer's organization.
func CategoriesVisibleTo(v Viewer) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v.IsOrganizer() || v.IsAgent() {
			return db.Where("categories.organization_id = ?", v.OrganizationID)
		}
		return deny(db)
	}
}

// AgentsManagedBy restricts an agents query to the agents of the organizer's
// organization. Agents manage nobody.
func AgentsManagedBy(v Viewer) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v.IsOrganizer() {
			return db.Where("agents.organization_id = ?", v.OrganizationID)
		}
		return deny(db)
	}
}
