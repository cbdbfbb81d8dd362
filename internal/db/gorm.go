package db

import (
	"strings"

	"github.com/habiliai/inbox/config"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/mylog"
	"github.com/jcooky/go-din"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens the database named by databaseUrl. postgres:// and
// postgresql:// URLs use PostgreSQL; sqlite://<path> and file: URLs use SQLite.
func OpenDB(databaseUrl string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseUrl, "postgres://"), strings.HasPrefix(databaseUrl, "postgresql://"):
		dialector = postgres.Open(databaseUrl)
	case strings.HasPrefix(databaseUrl, "sqlite://"):
		dialector = sqlite.Open(strings.TrimPrefix(databaseUrl, "sqlite://"))
	case strings.HasPrefix(databaseUrl, "file:"):
		dialector = sqlite.Open(databaseUrl)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unsupported database url")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if db.Dialector.Name() == "sqlite" {
		// SQLite allows a single writer; queue writers on one connection
		// instead of failing with "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get db")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrapf(err, "failed to get db")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrapf(err, "failed to close db")
	}

	return nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*gorm.DB, error) {
		logger, err := din.GetT[*mylog.Logger](c)
		if err != nil {
			return nil, err
		}

		cfg, err := din.GetT[*config.ServerConfig](c)
		if err != nil {
			return nil, err
		}

		logger.Info("initialize database")
		db, err := OpenDB(cfg.DatabaseUrl)
		if err != nil {
			return nil, err
		}

		if c.Env == din.EnvTest {
			if err := DropAll(c, db); err != nil {
				return nil, errors.Wrapf(err, "failed to drop database")
			}
		}
		if cfg.DatabaseAutoMigrate || c.Env == din.EnvTest {
			if err := AutoMigrate(c, db); err != nil {
				return nil, errors.Wrapf(err, "failed to migrate database")
			}
		}

		go func() {
			<-c.Done()
			if err := CloseDB(db); err != nil {
				logger.Warn("failed to close database", mylog.Err(err))
			}
			logger.Info("database closed")
		}()

		return db, nil
	})
}
