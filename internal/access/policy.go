// Package access holds the single role/resource/action permission table.
// Every operation consults it before touching storage; per-endpoint role
// branching is deliberately absent elsewhere.
package access

import (
	"github.com/atcops/opstrack/internal/common/cnst"
)

// Resource is a protected resource type
type Resource string

const (
	ResourceHardwareIncident Resource = "hardware_incident"
	ResourceSoftwareIncident Resource = "software_incident"
	ResourceEquipment        Resource = "equipment"
	ResourceReport           Resource = "report"
	ResourceUser             Resource = "user"
)

// Action is an operation attempted against a resource
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// domains maps each operational role to the resources it owns outright.
// chef_departement and superadmin are handled as blanket rules in Allowed.
var domains = map[cnst.Role]map[Resource]bool{
	cnst.RoleMaintenance: {
		ResourceHardwareIncident: true,
		ResourceEquipment:        true,
	},
	cnst.RoleIntegration: {
		ResourceSoftwareIncident: true,
		ResourceReport:           true,
	},
}

// Allowed reports whether role may perform action on resource. It is a pure
// function of its arguments.
func Allowed(role cnst.Role, resource Resource, action Action) bool {
	switch role {
	case cnst.RoleSuperAdmin:
		return true
	case cnst.RoleDepartmentHead:
		// Blanket read-only across both operational domains, never users.
		return action == ActionRead && resource != ResourceUser
	case cnst.RoleMaintenance, cnst.RoleIntegration:
		return domains[role][resource]
	default:
		return false
	}
}

// VisibleKinds returns the incident kinds a role's list results narrow to.
// Operational roles silently narrow to their own kind; roles with cross-domain
// read get both. An unknown role sees nothing.
func VisibleKinds(role cnst.Role) []cnst.IncidentKind {
	switch role {
	case cnst.RoleSuperAdmin, cnst.RoleDepartmentHead:
		return []cnst.IncidentKind{cnst.KindHardware, cnst.KindSoftware}
	case cnst.RoleMaintenance:
		return []cnst.IncidentKind{cnst.KindHardware}
	case cnst.RoleIntegration:
		return []cnst.IncidentKind{cnst.KindSoftware}
	default:
		return nil
	}
}

// CanSeeKind reports whether a role may read incidents of the given kind
func CanSeeKind(role cnst.Role, kind cnst.IncidentKind) bool {
	for _, k := range VisibleKinds(role) {
		if k == kind {
			return true
		}
	}
	return false
}

// KindResource maps an incident kind to its resource type
func KindResource(kind cnst.IncidentKind) Resource {
	if kind == cnst.KindSoftware {
		return ResourceSoftwareIncident
	}
	return ResourceHardwareIncident
}
