package cnst

// Role represents a user role
type Role string

const (
	// RoleMaintenance is the hardware maintenance service role
	RoleMaintenance Role = "service_maintenance"
	// RoleIntegration is the software integration and development service role
	RoleIntegration Role = "service_integration"
	// RoleDepartmentHead is the read-only department head role
	RoleDepartmentHead Role = "chef_departement"
	// RoleSuperAdmin is the full-access administration role
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleMaintenance, RoleIntegration, RoleDepartmentHead, RoleSuperAdmin:
		return true
	}
	return false
}

// IncidentKind discriminates the two incident families
type IncidentKind string

const (
	KindHardware IncidentKind = "hardware"
	KindSoftware IncidentKind = "software"
)

// EquipmentState represents an equipment record's lifecycle state
type EquipmentState string

const (
	EquipmentCurrent    EquipmentState = "current"
	EquipmentHistorical EquipmentState = "historical"
)

// MaintenanceType tags a hardware intervention
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
)
