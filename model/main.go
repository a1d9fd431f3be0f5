package model

import (
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/caratlab/jewel-studio/common"
	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/env"
	"github.com/caratlab/jewel-studio/common/logger"
)

var DB *gorm.DB

func chooseDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		PrepareStmt: true,
	}
	if config.DebugSQLEnabled {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	if dsn := os.Getenv("SQL_DSN"); dsn != "" {
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			logger.SysLog("using PostgreSQL as database")
			return gorm.Open(postgres.New(postgres.Config{
				DSN:                  dsn,
				PreferSimpleProtocol: true,
			}), gormConfig)
		}
		logger.SysLog("using MySQL as database")
		return gorm.Open(mysql.Open(dsn), gormConfig)
	}

	logger.SysLog("SQL_DSN not set, using SQLite as database")
	return gorm.Open(sqlite.Open(common.SQLitePath+"?_busy_timeout=5000"), gormConfig)
}

func InitDB() (err error) {
	DB, err = chooseDB()
	if err != nil {
		logger.FatalLog("failed to initialize database: " + err.Error())
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(env.Int("SQL_MAX_IDLE_CONNS", 100))
	sqlDB.SetMaxOpenConns(env.Int("SQL_MAX_OPEN_CONNS", 1000))
	sqlDB.SetConnMaxLifetime(time.Second * time.Duration(env.Int("SQL_MAX_LIFETIME", 60)))

	logger.SysLog("database migration started")
	err = DB.AutoMigrate(&Task{})
	if err != nil {
		return err
	}
	logger.SysLog("database migrated")
	return nil
}

func CloseDB() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
