package database

import (
	"github.com/atcops/opstrack/internal/common/config"
)

// NewDatabase creates a new database based on configuration
func NewDatabase(cfg *config.DatabaseConfig) (Database, error) {
	return NewStore(cfg)
}
