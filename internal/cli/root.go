// Package cli 实现 achievementctl 运维命令行
package cli

import (
	"fmt"
	"io"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/database"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configDir string
	migrate   bool
)

var rootCmd = &cobra.Command{
	Use:   "achievementctl",
	Short: "Maintenance commands for the achievement service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env 可选
		_ = godotenv.Load()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVar(&migrate, "migrate", false, "run database migrations before the command")
}

// Execute 由 main 调用
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type backend struct {
	db           *gorm.DB
	users        *repository.UserRepository
	achievements *service.AchievementService
}

func (b *backend) Close() {
	if sqlDB, err := b.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// openBackend 按配置连接数据库并构建成就服务
func openBackend() (*backend, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc := service.NewAchievementService(
		db,
		repository.NewUserStatsRepository(db),
		repository.NewAchievementRepository(db),
		repository.NewAssignmentRepository(db),
		service.WithLocation(cfg.Achievement.Location()),
	)

	return &backend{
		db:           db,
		users:        repository.NewUserRepository(db),
		achievements: svc,
	}, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
