package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/common/config"
)

// NewStore creates a new revoked-token store based on configuration
func NewStore(logger *zap.Logger, cfg *config.TokenStoreConfig) (Store, error) {
	logger.Info("Initializing token store", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "memory":
		return NewMemoryStorage(), nil
	case "redis":
		return NewRedisStorage(&cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported token store type: %s", cfg.Type)
	}
}
