package database

import (
	"context"
	"time"
)

// DowntimeAggregate holds the downtime figures computed over hardware
// incidents with a recorded positive downtime
type DowntimeAggregate struct {
	TotalMinutes int64
	Average      *float64
	Count        int64
}

// Database defines the methods for database operations. Lookups by secondary
// key return (nil, nil) when no row matches; lookups by id return ErrNotFound.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside a transaction carried through the context.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uint) error
	// IncrementFailedLogins atomically bumps the failed-attempt counter and
	// returns the resulting count.
	IncrementFailedLogins(ctx context.Context, id uint) (int, error)
	LockUser(ctx context.Context, id uint, until time.Time) error
	ResetUserLock(ctx context.Context, id uint) error

	// Equipment
	CreateEquipment(ctx context.Context, eq *Equipment) error
	GetEquipmentByID(ctx context.Context, id uint) (*Equipment, error)
	ListEquipment(ctx context.Context) ([]*Equipment, error)
	// FindCurrentEquipmentBySerial matches the serial case-insensitively and
	// returns the most recent record in the current state. lock takes a row
	// lock where the backend supports one; callers must then be inside a
	// transaction.
	FindCurrentEquipmentBySerial(ctx context.Context, serial string, lock bool) (*Equipment, error)
	// FindLatestEquipmentBySerial is the same lookup without the state filter.
	FindLatestEquipmentBySerial(ctx context.Context, serial string, lock bool) (*Equipment, error)
	ArchiveEquipment(ctx context.Context, id uint) error
	SearchEquipmentSerials(ctx context.Context, query string, limit int) ([]string, error)

	// Hardware incidents
	CreateHardwareIncident(ctx context.Context, in *HardwareIncident) error
	GetHardwareIncident(ctx context.Context, id uint) (*HardwareIncident, error)
	ListHardwareIncidents(ctx context.Context) ([]*HardwareIncident, error)
	SaveHardwareIncident(ctx context.Context, in *HardwareIncident) error
	DeleteHardwareIncident(ctx context.Context, id uint) error
	ListHardwareIncidentsForEquipment(ctx context.Context, equipmentID uint, serial string) ([]*HardwareIncident, error)
	CountHardwareIncidents(ctx context.Context) (int64, error)
	CountHardwareIncidentsSince(ctx context.Context, date string) (int64, error)
	HardwareDowntimeAggregate(ctx context.Context) (*DowntimeAggregate, error)
	ListRecentHardwareIncidents(ctx context.Context, limit int) ([]*HardwareIncident, error)

	// Software incidents
	CreateSoftwareIncident(ctx context.Context, in *SoftwareIncident) error
	GetSoftwareIncident(ctx context.Context, id uint) (*SoftwareIncident, error)
	ListSoftwareIncidents(ctx context.Context) ([]*SoftwareIncident, error)
	SaveSoftwareIncident(ctx context.Context, in *SoftwareIncident) error
	// DeleteSoftwareIncident removes the incident and its report atomically.
	DeleteSoftwareIncident(ctx context.Context, id uint) error
	CountSoftwareIncidents(ctx context.Context) (int64, error)
	CountSoftwareIncidentsSince(ctx context.Context, date string) (int64, error)
	ListRecentSoftwareIncidents(ctx context.Context, limit int) ([]*SoftwareIncident, error)

	// Reports
	CreateReport(ctx context.Context, r *Report) error
	GetReport(ctx context.Context, id uint) (*Report, error)
	GetReportByIncident(ctx context.Context, incidentID uint) (*Report, error)
	ListReports(ctx context.Context, incidentID *uint) ([]*Report, error)
	SaveReport(ctx context.Context, r *Report) error
	DeleteReport(ctx context.Context, id uint) error
}
