package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/apiserver"
	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/auth/jwt"
	"github.com/atcops/opstrack/internal/auth/lockout"
	"github.com/atcops/opstrack/internal/auth/storage"
	"github.com/atcops/opstrack/internal/common/config"
	"github.com/atcops/opstrack/pkg/logger"
	"github.com/atcops/opstrack/pkg/metrics"
	"github.com/atcops/opstrack/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Technical operations incident tracker",
		Long:  `API server for tracking hardware and software incidents, equipment history and resolution reports`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting apiserver",
		zap.String("version", version.Get()),
		zap.Int("port", cfg.Server.Port))

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := database.InitSuperAdmin(db, &cfg.SuperAdmin); err != nil {
		zapLogger.Fatal("Failed to seed super admin", zap.Error(err))
	}

	jwtService, err := jwt.NewService(cfg.JWT)
	if err != nil {
		zapLogger.Fatal("Failed to create JWT service", zap.Error(err))
	}

	tokens, err := storage.NewStore(zapLogger, &cfg.TokenStore)
	if err != nil {
		zapLogger.Fatal("Failed to create token store", zap.Error(err))
	}
	defer tokens.Close()

	guard := lockout.NewGuard(db, zapLogger, cfg.Lockout)

	r := apiserver.NewRouter(apiserver.Deps{
		DB:         db,
		JWTService: jwtService,
		Tokens:     tokens,
		Guard:      guard,
		Metrics:    metrics.New(cfg.Metrics),
		Logger:     zapLogger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zapLogger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("Server stopped", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
