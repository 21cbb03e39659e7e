package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// 考勤库 schema 随二进制发布，启动时自动补齐到最新版本
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 将考勤库 schema 迁移到最新版本
// 已是最新版本时静默通过；迁移残留 dirty 状态时只告警不拦启动
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("构建 postgres 迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("组装迁移实例失败: %w", err)
	}

	switch err := m.Up(); {
	case err == nil:
		// 本次应用了至少一个迁移
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("考勤库 schema 已是最新")
	default:
		return fmt.Errorf("应用考勤库迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("考勤库迁移残留 dirty 状态，需人工核对", zap.Uint("version", version))
		return nil
	}
	logger.Info("考勤库 schema 就绪", zap.Uint("version", version))
	return nil
}
