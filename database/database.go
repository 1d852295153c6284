package database

import (
	"context"
	"fmt"
	"time"

	config "github.com/anjiri1684/grading_portal/configs"
	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Slot{}); err != nil {
		return fmt.Errorf("migrate slots: %w", err)
	}
	return nil
}

func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// OpenBackend builds the slot backend selected by STORAGE_DRIVER. The
// returned closer releases the underlying connection.
func OpenBackend(ctx context.Context, cfg config.Settings, log *logger.Logger) (storage.Backend, func() error, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("Using in-memory slot storage; data is lost on restart")
		return storage.NewMemoryBackend(), func() error { return nil }, nil

	case "sqlite", "postgres":
		dsn := cfg.DatabaseURL
		if cfg.StorageDriver == "sqlite" {
			dsn = cfg.SQLitePath
		}
		db, err := ConnectDB(cfg.StorageDriver, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, nil, err
		}
		log.Info("Database connected", "driver", cfg.StorageDriver)
		closer := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return storage.NewGormBackend(db), closer, nil

	case "redis":
		rdb, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Redis connected", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return storage.NewRedisBackend(rdb, cfg.RedisPrefix), rdb.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}
