package database

import (
	"context"
	"fmt"
	"time"

	"oms-customers/internal/config"
	"oms-customers/internal/models"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Open connects to the configured database, migrates the schema and seeds
// the bootstrap admin (and demo cities when asked to).
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		log.WithFields(logrus.Fields{
			"driver":  cfg.DBDriver,
			"attempt": i,
		}).Info("connecting to database")

		dial, dErr := dialector(cfg)
		if dErr != nil {
			return nil, dErr
		}
		db, err = gorm.Open(dial, gormCfg)
		if err == nil {
			break
		}

		log.WithError(err).Warn("database connection failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to database after %d attempts: %w", connectAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := createDefaultAdmin(ctx, db, cfg, log); err != nil {
		return nil, err
	}
	if cfg.SeedCities {
		if err := seedCities(ctx, db, log); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	if cfg.DBDriver == config.DriverMySQL {
		dsn, err := mysqlDSN(cfg.DBDSN.Value())
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	}
	return postgres.Open(cfg.DBDSN.Value()), nil
}

// mysqlDSN forces parseTime=true; without it DATETIME columns come back as
// []byte and cannot be scanned into time.Time.
func mysqlDSN(dsn string) (string, error) {
	dsnCfg, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql DB_DSN: %w", err)
	}
	dsnCfg.ParseTime = true
	return dsnCfg.FormatDSN(), nil
}

// Migrate creates or updates the tables this service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.City{},
		&models.Customer{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// the admin account only ever comes from configuration
func createDefaultAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("checking admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.AdminPassword.Value() == "" {
		log.Warn("no admin user exists and ADMIN_PASSWORD is not set; skipping bootstrap admin")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword.Value()), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	log.WithField("username", admin.Username).Info("created bootstrap admin user")
	return nil
}

var demoCities = []string{
	"Colombo", "Dehiwala-Mount Lavinia", "Moratuwa", "Negombo", "Kandy",
	"Galle", "Matara", "Jaffna", "Kurunegala", "Anuradhapura",
	"Ratnapura", "Badulla", "Trincomalee", "Batticaloa", "Kalutara",
}

// seedCities fills an empty city table for local development.
func seedCities(ctx context.Context, db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.City{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting cities: %w", err)
	}
	if count > 0 {
		return nil
	}

	cities := make([]models.City, 0, len(demoCities))
	for _, name := range demoCities {
		cities = append(cities, models.City{Name: name, IsActive: true})
	}
	if err := db.WithContext(ctx).Create(&cities).Error; err != nil {
		return fmt.Errorf("seeding cities: %w", err)
	}

	log.WithField("count", len(cities)).Info("seeded demo cities")
	return nil
}
