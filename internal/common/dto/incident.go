package dto

// IncidentTypeProbe extracts the family discriminator from a mixed incident
// payload before the body is bound a second time.
type IncidentTypeProbe struct {
	IncidentType string `json:"incident_type"`
}

// CreateHardwareIncidentRequest represents a hardware incident creation.
// Serial number, partition and equipment name are recorded as a snapshot on
// the incident besides driving the equipment reconciliation.
type CreateHardwareIncidentRequest struct {
	Date                string `json:"date" binding:"required"`
	Time                string `json:"time" binding:"required"`
	EquipmentName       string `json:"equipment_name" binding:"required"`
	Partition           string `json:"partition"`
	SerialNumber        string `json:"serial_number"`
	Description         string `json:"description" binding:"required"`
	ObservedAnomaly     string `json:"observed_anomaly"`
	ActionTaken         string `json:"action_taken"`
	SparePartUsed       string `json:"spare_part_used"`
	EquipmentStateAfter string `json:"equipment_state_after"`
	Recommendation      string `json:"recommendation"`
	DowntimeMinutes     *int   `json:"downtime_minutes" binding:"omitempty,min=0"`
	MaintenanceType     string `json:"maintenance_type" binding:"omitempty,oneof=preventive corrective"`
}

// UpdateHardwareIncidentRequest represents a partial hardware incident
// update; nil fields keep their stored value.
type UpdateHardwareIncidentRequest struct {
	Date                *string `json:"date,omitempty"`
	Time                *string `json:"time,omitempty"`
	EquipmentName       *string `json:"equipment_name,omitempty"`
	Partition           *string `json:"partition,omitempty"`
	SerialNumber        *string `json:"serial_number,omitempty"`
	Description         *string `json:"description,omitempty"`
	ObservedAnomaly     *string `json:"observed_anomaly,omitempty"`
	ActionTaken         *string `json:"action_taken,omitempty"`
	SparePartUsed       *string `json:"spare_part_used,omitempty"`
	EquipmentStateAfter *string `json:"equipment_state_after,omitempty"`
	Recommendation      *string `json:"recommendation,omitempty"`
	DowntimeMinutes     *int    `json:"downtime_minutes,omitempty" binding:"omitempty,min=0"`
	MaintenanceType     *string `json:"maintenance_type,omitempty" binding:"omitempty,oneof=preventive corrective"`
}

// CreateSoftwareIncidentRequest represents a software incident creation
type CreateSoftwareIncidentRequest struct {
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
	Simulator      bool   `json:"simulator"`
	OperationsRoom bool   `json:"operations_room"`
	Server         string `json:"server"`
	Partition      string `json:"partition"`
	Position       string `json:"position"`
	AnomalyType    string `json:"anomaly_type"`
	Callsign       string `json:"callsign"`
	RadarMode      string `json:"radar_mode"`
	FlightLevel    string `json:"flight_level"`
	Longitude      string `json:"longitude"`
	Latitude       string `json:"latitude"`
	SSRCode        string `json:"ssr_code"`
	Subject        string `json:"subject"`
	Description    string `json:"description" binding:"required"`
	Comments       string `json:"comments"`
}

// UpdateSoftwareIncidentRequest represents a partial software incident
// update; nil fields keep their stored value.
type UpdateSoftwareIncidentRequest struct {
	Date           *string `json:"date,omitempty"`
	Time           *string `json:"time,omitempty"`
	Simulator      *bool   `json:"simulator,omitempty"`
	OperationsRoom *bool   `json:"operations_room,omitempty"`
	Server         *string `json:"server,omitempty"`
	Partition      *string `json:"partition,omitempty"`
	Position       *string `json:"position,omitempty"`
	AnomalyType    *string `json:"anomaly_type,omitempty"`
	Callsign       *string `json:"callsign,omitempty"`
	RadarMode      *string `json:"radar_mode,omitempty"`
	FlightLevel    *string `json:"flight_level,omitempty"`
	Longitude      *string `json:"longitude,omitempty"`
	Latitude       *string `json:"latitude,omitempty"`
	SSRCode        *string `json:"ssr_code,omitempty"`
	Subject        *string `json:"subject,omitempty"`
	Description    *string `json:"description,omitempty"`
	Comments       *string `json:"comments,omitempty"`
}
