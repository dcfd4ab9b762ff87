package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chwadmin/internal/config"
	"chwadmin/internal/models"
	"chwadmin/internal/utils/logger"
)

var DB *gorm.DB
var log = logger.New("DB")

const (
	connectAttempts = 5
	retryDelay      = 5 * time.Second
)

// Tables lists every model migrated at startup, parents before children.
var Tables = []interface{}{
	&models.Permission{},
	&models.Role{},
	&models.Facility{},
	&models.User{},
	&models.AuthSession{},
	&models.File{},
	&models.Quiz{},
	&models.QuizQuestion{},
	&models.Book{},
}

// Connect opens the postgres pool, retrying while the server comes up, and
// migrates the schema.
func Connect(cfg *config.Config) error {
	dbc := cfg.Database
	log.Info("Connecting to database %s@%s:%d/%s", dbc.User, dbc.Host, dbc.Port, dbc.Name)

	gdb, err := open(dbc.DSN())
	if err != nil {
		return log.Error("Failed to connect to database after %d attempts", err, connectAttempts)
	}
	log.Success("Connected to database")

	if err := configurePool(gdb, dbc); err != nil {
		return log.Error("Failed to configure connection pool", err)
	}

	if err := migrate(gdb); err != nil {
		return log.Error("Failed to run migrations", err)
	}
	log.Success("Migrations completed")

	DB = gdb
	return nil
}

func open(dsn string) (*gorm.DB, error) {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var gdb *gorm.DB
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
		})
		if err == nil {
			return gdb, nil
		}
		log.Warn("Database not ready (attempt %d/%d): %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}

func configurePool(gdb *gorm.DB, dbc config.DatabaseConfig) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if dbc.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbc.MaxOpenConns)
	}
	if dbc.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbc.MaxIdleConns)
	}
	if dbc.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbc.MaxLifetime)
	}
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	return nil
}

func migrate(gdb *gorm.DB) error {
	log.Info("Migrating %d tables", len(Tables))
	return gdb.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(Tables...)
	})
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}

// Ping checks the connection, used by the health endpoint.
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
