package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/model"
	"affiliatelink-go/pkg/logging"
)

// OpenDB 按配置打开数据库连接池并迁移表结构
func OpenDB(cfg config.DBConfig, logger *zap.Logger, atomicLogLevel zap.AtomicLevel) (*gorm.DB, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormLogger(logger,
			logging.ToGormLogLevel(atomicLogLevel.Level()),
			time.Duration(cfg.SlowThresholdMs)*time.Millisecond,
		),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSeconds) * time.Second)
	}
	if cfg.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeSeconds) * time.Second)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Migrate 迁移全部表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.AffiliateLink{}, &model.ClickEvent{}, &model.ConversionTotal{})
}

// CloseDB 关闭连接池
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newDialector(cfg config.DBConfig) (gorm.Dialector, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		// 文件型 sqlite 需先建目录
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), os.ModePerm); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db.driver %q", cfg.Driver)
	}
}
