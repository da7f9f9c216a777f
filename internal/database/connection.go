package database

import (
	"fmt"
	"time"

	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector builds the gorm dialector for cfg.DBType.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "postgres", "postgresql":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		}
		return postgres.Open(dsn), nil

	case "mysql", "mariadb":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		return mysql.Open(dsn), nil

	case "sqlite":
		// DATABASE_URL or DB_NAME is the file path.
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = cfg.DBName
		}
		return sqlite.Open(dsn), nil

	case "sqlserver", "mssql":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		return sqlserver.Open(dsn), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}

// Connect opens the configured database and sizes its pool.
func Connect(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(cfg.DBConnectionLimit / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info().Str("db_type", cfg.DBType).Int("pool", cfg.DBConnectionLimit).Msg("database connected")
	return db, nil
}

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Agent{},
		&models.Category{},
		&models.Complaint{},
		&models.Location{},
		&models.Upvote{},
		&models.ComplaintEvent{},
		&models.Sequence{},
	); err != nil {
		return err
	}
	if db.Dialector.Name() == "postgres" {
		return createSequence(db, models.ComplaintSequence)
	}
	return nil
}

// createSequence adds the postgres sequence for a counter the first time,
// starting after the highest complaint seq already stored.
func createSequence(db *gorm.DB, name string) error {
	rel := models.SequenceRelation(name)
	var exists bool
	if err := db.Raw("SELECT to_regclass(?) IS NOT NULL", rel).Scan(&exists).Error; err != nil {
		return err
	}
	if exists {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("CREATE SEQUENCE IF NOT EXISTS " + rel).Error; err != nil {
			return err
		}
		return tx.Exec("SELECT setval(?::regclass, COALESCE((SELECT MAX(seq) FROM complaints), 0) + 1, false)", rel).Error
	})
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
