package database

import (
	"time"

	"github.com/atcops/opstrack/internal/common/cnst"
)

// User represents an account able to authenticate against the API
type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username            string     `json:"username" gorm:"type:varchar(50);uniqueIndex"`
	Password            string     `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	Role                cnst.Role  `json:"role" gorm:"type:varchar(30);not null;default:'service_maintenance'"`
	IsActive            bool       `json:"is_active" gorm:"not null;default:true"`
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Equipment represents one equipment identity at one point of its naming
// history. Superseding a record flips its state to historical and inserts a
// new current row; rows are never edited in place.
type Equipment struct {
	ID           uint                `json:"id" gorm:"primaryKey;autoIncrement"`
	SerialNumber string              `json:"serial_number" gorm:"type:varchar(255);index"`
	Name         string              `json:"name" gorm:"type:varchar(255);not null"`
	Partition    string              `json:"partition" gorm:"type:varchar(255);not null"`
	State        cnst.EquipmentState `json:"state" gorm:"type:varchar(50);not null;default:'current'"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (Equipment) TableName() string { return "equipment" }

// HardwareIncident records an intervention on physical equipment. The
// equipment name/partition/serial columns are a snapshot taken at incident
// time and are intentionally not kept in sync with later equipment renames.
type HardwareIncident struct {
	ID                  uint                 `json:"id" gorm:"primaryKey;autoIncrement"`
	Date                string               `json:"date" gorm:"type:varchar(10);not null;index"`
	Time                string               `json:"time" gorm:"type:varchar(8);not null"`
	EquipmentName       string               `json:"equipment_name" gorm:"type:varchar(255);not null"`
	Partition           string               `json:"partition" gorm:"type:varchar(255)"`
	SerialNumber        string               `json:"serial_number" gorm:"type:varchar(255)"`
	EquipmentID         *uint                `json:"equipment_id"`
	Description         string               `json:"description" gorm:"type:text;not null"`
	ObservedAnomaly     string               `json:"observed_anomaly" gorm:"type:text"`
	ActionTaken         string               `json:"action_taken" gorm:"type:text"`
	SparePartUsed       string               `json:"spare_part_used" gorm:"type:text"`
	EquipmentStateAfter string               `json:"equipment_state_after" gorm:"type:text"`
	Recommendation      string               `json:"recommendation" gorm:"type:text"`
	DowntimeMinutes     *int                 `json:"downtime_minutes"`
	MaintenanceType     cnst.MaintenanceType `json:"maintenance_type" gorm:"type:varchar(20)"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func (HardwareIncident) TableName() string { return "hardware_incidents" }

// SoftwareIncident records an anomaly observed in the operational or
// simulator environment
type SoftwareIncident struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Date           string    `json:"date" gorm:"type:varchar(10);not null;index"`
	Time           string    `json:"time" gorm:"type:varchar(8);not null"`
	Simulator      bool      `json:"simulator" gorm:"not null;default:false"`
	OperationsRoom bool      `json:"operations_room" gorm:"not null;default:false"`
	Server         string    `json:"server" gorm:"type:varchar(255)"`
	Partition      string    `json:"partition" gorm:"type:varchar(255)"`
	Position       string    `json:"position" gorm:"type:varchar(255)"`
	AnomalyType    string    `json:"anomaly_type" gorm:"type:varchar(255)"`
	Callsign       string    `json:"callsign" gorm:"type:varchar(255)"`
	RadarMode      string    `json:"radar_mode" gorm:"type:varchar(255)"`
	FlightLevel    string    `json:"flight_level" gorm:"type:varchar(255)"`
	Longitude      string    `json:"longitude" gorm:"type:varchar(255)"`
	Latitude       string    `json:"latitude" gorm:"type:varchar(255)"`
	SSRCode        string    `json:"ssr_code" gorm:"type:varchar(255)"`
	Subject        string    `json:"subject" gorm:"type:varchar(255)"`
	Description    string    `json:"description" gorm:"type:text;not null"`
	Comments       string    `json:"comments" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (SoftwareIncident) TableName() string { return "software_incidents" }

// Report is the resolution report attached to a software incident, at most
// one per incident
type Report struct {
	ID                 uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SoftwareIncidentID uint      `json:"incident" gorm:"not null;uniqueIndex"`
	Date               string    `json:"date" gorm:"type:varchar(10);not null"`
	Time               string    `json:"time" gorm:"type:varchar(8);not null"`
	Anomaly            string    `json:"anomaly" gorm:"type:text;not null"`
	Analysis           string    `json:"analysis" gorm:"type:text"`
	Conclusion         string    `json:"conclusion" gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Report) TableName() string { return "reports" }
