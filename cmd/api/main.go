package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"jielong-bot/internal/config"
	"jielong-bot/internal/database"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "jielong-bot",
		Short: "LINE group sign-up chain bot",
		Long: `jielong-bot keeps one running sign-up list (接龍) per LINE group.
Members join with "+1", the opener closes it with "結團", and every open
list is pushed back to its group on a daily schedule.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(broadcastCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles what every subcommand needs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap loads configuration, builds the logger and opens the migrated database
func bootstrap(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		BusyTimeout:     cfg.Database.BusyTimeout,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("Database opened", zap.String("path", cfg.Database.Path))

	if err := database.AutoMigrate(db, logger); err != nil {
		_ = database.Close(db)
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Error("Failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
