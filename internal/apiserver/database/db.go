package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/config"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by id lookups when no row matches
var ErrNotFound = gorm.ErrRecordNotFound

// Store implements the Database interface on top of gorm
type Store struct {
	db     *gorm.DB
	dbType string
}

var _ Database = (*Store)(nil)

// NewStore creates a new gorm-backed store
func NewStore(cfg *config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	case "mysql":
		dialector = mysql.Open(cfg.GetDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gormDB.AutoMigrate(
		&User{},
		&Equipment{},
		&HardwareIncident{},
		&SoftwareIncident{},
		&Report{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: gormDB, dbType: cfg.Type}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a transaction carried through the context. A
// context already holding a transaction joins it instead of opening a new one.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TransactionFromContext(ctx) != nil {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, s.db)
}

// forUpdate adds a row lock on backends that support it. SQLite rejects the
// FOR UPDATE clause and serializes writers on its own, so the transaction
// alone suffices there.
func (s *Store) forUpdate(tx *gorm.DB) *gorm.DB {
	if s.dbType == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return s.conn(ctx).Create(user).Error
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.conn(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.conn(ctx).Order("created_at desc").Find(&users).Error
	return users, err
}

func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	return s.conn(ctx).Save(user).Error
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.conn(ctx).Delete(&User{}, id).Error
}

func (s *Store) IncrementFailedLogins(ctx context.Context, id uint) (int, error) {
	err := s.conn(ctx).Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1")).Error
	if err != nil {
		return 0, err
	}
	var user User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return 0, err
	}
	return user.FailedLoginAttempts, nil
}

func (s *Store) LockUser(ctx context.Context, id uint, until time.Time) error {
	return s.conn(ctx).Model(&User{}).
		Where("id = ?", id).
		Update("locked_until", until).Error
}

func (s *Store) ResetUserLock(ctx context.Context, id uint) error {
	return s.conn(ctx).Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error
}

// ---- equipment ----

func (s *Store) CreateEquipment(ctx context.Context, eq *Equipment) error {
	return s.conn(ctx).Create(eq).Error
}

func (s *Store) GetEquipmentByID(ctx context.Context, id uint) (*Equipment, error) {
	var eq Equipment
	if err := s.conn(ctx).First(&eq, id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *Store) ListEquipment(ctx context.Context) ([]*Equipment, error) {
	var eqs []*Equipment
	err := s.conn(ctx).Order("created_at desc").Find(&eqs).Error
	return eqs, err
}

func (s *Store) findEquipmentBySerial(ctx context.Context, serial string, onlyCurrent, lock bool) (*Equipment, error) {
	tx := s.conn(ctx).Where("LOWER(serial_number) = LOWER(?)", serial)
	if onlyCurrent {
		tx = tx.Where("state = ?", cnst.EquipmentCurrent)
	}
	if lock {
		tx = s.forUpdate(tx)
	}
	var eq Equipment
	err := tx.Order("created_at desc").First(&eq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *Store) FindCurrentEquipmentBySerial(ctx context.Context, serial string, lock bool) (*Equipment, error) {
	return s.findEquipmentBySerial(ctx, serial, true, lock)
}

func (s *Store) FindLatestEquipmentBySerial(ctx context.Context, serial string, lock bool) (*Equipment, error) {
	return s.findEquipmentBySerial(ctx, serial, false, lock)
}

func (s *Store) ArchiveEquipment(ctx context.Context, id uint) error {
	return s.conn(ctx).Model(&Equipment{}).
		Where("id = ?", id).
		Update("state", cnst.EquipmentHistorical).Error
}

func (s *Store) SearchEquipmentSerials(ctx context.Context, query string, limit int) ([]string, error) {
	var serials []string
	err := s.conn(ctx).Model(&Equipment{}).
		Distinct("serial_number").
		Where("serial_number <> ''").
		Where("LOWER(serial_number) LIKE LOWER(?)", "%"+query+"%").
		Limit(limit).
		Pluck("serial_number", &serials).Error
	return serials, err
}

// ---- hardware incidents ----

func (s *Store) CreateHardwareIncident(ctx context.Context, in *HardwareIncident) error {
	return s.conn(ctx).Create(in).Error
}

func (s *Store) GetHardwareIncident(ctx context.Context, id uint) (*HardwareIncident, error) {
	var in HardwareIncident
	if err := s.conn(ctx).First(&in, id).Error; err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Store) ListHardwareIncidents(ctx context.Context) ([]*HardwareIncident, error) {
	var ins []*HardwareIncident
	err := s.conn(ctx).Order("created_at desc").Find(&ins).Error
	return ins, err
}

func (s *Store) SaveHardwareIncident(ctx context.Context, in *HardwareIncident) error {
	return s.conn(ctx).Save(in).Error
}

func (s *Store) DeleteHardwareIncident(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&HardwareIncident{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListHardwareIncidentsForEquipment(ctx context.Context, equipmentID uint, serial string) ([]*HardwareIncident, error) {
	tx := s.conn(ctx).Where("equipment_id = ?", equipmentID)
	if serial != "" {
		tx = s.conn(ctx).Where("equipment_id = ? OR LOWER(serial_number) = LOWER(?)", equipmentID, serial)
	}
	var ins []*HardwareIncident
	err := tx.Order("date desc").Order("time desc").Find(&ins).Error
	return ins, err
}

func (s *Store) CountHardwareIncidents(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&HardwareIncident{}).Count(&count).Error
	return count, err
}

func (s *Store) CountHardwareIncidentsSince(ctx context.Context, date string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&HardwareIncident{}).
		Where("date >= ?", date).
		Count(&count).Error
	return count, err
}

func (s *Store) HardwareDowntimeAggregate(ctx context.Context) (*DowntimeAggregate, error) {
	var row struct {
		Total *int64
		Avg   *float64
		Cnt   int64
	}
	err := s.conn(ctx).Model(&HardwareIncident{}).
		Select("SUM(downtime_minutes) as total, AVG(downtime_minutes) as avg, COUNT(*) as cnt").
		Where("downtime_minutes IS NOT NULL AND downtime_minutes > 0").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	agg := &DowntimeAggregate{Average: row.Avg, Count: row.Cnt}
	if row.Total != nil {
		agg.TotalMinutes = *row.Total
	}
	return agg, nil
}

func (s *Store) ListRecentHardwareIncidents(ctx context.Context, limit int) ([]*HardwareIncident, error) {
	var ins []*HardwareIncident
	err := s.conn(ctx).Order("created_at desc").Limit(limit).Find(&ins).Error
	return ins, err
}

// ---- software incidents ----

func (s *Store) CreateSoftwareIncident(ctx context.Context, in *SoftwareIncident) error {
	return s.conn(ctx).Create(in).Error
}

func (s *Store) GetSoftwareIncident(ctx context.Context, id uint) (*SoftwareIncident, error) {
	var in SoftwareIncident
	if err := s.conn(ctx).First(&in, id).Error; err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Store) ListSoftwareIncidents(ctx context.Context) ([]*SoftwareIncident, error) {
	var ins []*SoftwareIncident
	err := s.conn(ctx).Order("created_at desc").Find(&ins).Error
	return ins, err
}

func (s *Store) SaveSoftwareIncident(ctx context.Context, in *SoftwareIncident) error {
	return s.conn(ctx).Save(in).Error
}

// DeleteSoftwareIncident removes the incident together with its report so no
// orphan report can survive
func (s *Store) DeleteSoftwareIncident(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.conn(ctx).Where("software_incident_id = ?", id).Delete(&Report{}).Error; err != nil {
			return err
		}
		res := s.conn(ctx).Delete(&SoftwareIncident{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) CountSoftwareIncidents(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&SoftwareIncident{}).Count(&count).Error
	return count, err
}

func (s *Store) CountSoftwareIncidentsSince(ctx context.Context, date string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&SoftwareIncident{}).
		Where("date >= ?", date).
		Count(&count).Error
	return count, err
}

func (s *Store) ListRecentSoftwareIncidents(ctx context.Context, limit int) ([]*SoftwareIncident, error) {
	var ins []*SoftwareIncident
	err := s.conn(ctx).Order("created_at desc").Limit(limit).Find(&ins).Error
	return ins, err
}

// ---- reports ----

func (s *Store) CreateReport(ctx context.Context, r *Report) error {
	return s.conn(ctx).Create(r).Error
}

func (s *Store) GetReport(ctx context.Context, id uint) (*Report, error) {
	var r Report
	if err := s.conn(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetReportByIncident(ctx context.Context, incidentID uint) (*Report, error) {
	var r Report
	err := s.conn(ctx).Where("software_incident_id = ?", incidentID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, incidentID *uint) ([]*Report, error) {
	tx := s.conn(ctx)
	if incidentID != nil {
		tx = tx.Where("software_incident_id = ?", *incidentID)
	}
	var reports []*Report
	err := tx.Order("created_at desc").Find(&reports).Error
	return reports, err
}

func (s *Store) SaveReport(ctx context.Context, r *Report) error {
	return s.conn(ctx).Save(r).Error
}

func (s *Store) DeleteReport(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&Report{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
