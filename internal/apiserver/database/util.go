package database

import (
	"context"
	"time"

	"github.com/atcops/opstrack/internal/common/cnst"
	"github.com/atcops/opstrack/internal/common/config"
	"golang.org/x/crypto/bcrypt"
)

// InitSuperAdmin provisions the configured super admin account if it does not
// exist yet. Existing accounts are left untouched.
func InitSuperAdmin(db Database, cfg *config.SuperAdminConfig) error {
	if cfg == nil || cfg.Username == "" || cfg.Password == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := db.GetUserByUsername(ctx, cfg.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.CreateUser(ctx, &User{
		Username:  cfg.Username,
		Password:  string(hashed),
		Role:      cnst.RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}
