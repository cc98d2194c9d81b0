package db

import (
	"time"

	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the database selected by driver ("postgres" or "sqlite").
func Open(driver, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return conn, nil
}

// Migrate creates or updates the tables of every entity kind.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.Post{},
		&models.Comment{},
		&models.LinkFlair{},
	)
	return errors.Wrap(err, "failed to migrate database")
}

// Init opens the database, runs migrations and returns the entity store.
func Init(driver, dsn string, log logrus.FieldLogger) (*Store, error) {
	conn, err := Open(driver, dsn, log)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info("Database migration completed")

	return NewStore(conn), nil
}
