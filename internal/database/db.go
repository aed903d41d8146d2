package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wastetrack/internal/models"
)

const (
	maxAttempts  = 10
	attemptDelay = 2 * time.Second
)

// Open подключается к Postgres журнала с повторами и прогоняет миграции.
func Open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	return Connect(postgres.Open(dsn), maxAttempts, attemptDelay, log)
}

// Connect is Open for any gorm dialector.
func Connect(dialector gorm.Dialector, attempts int, delay time.Duration, log zerolog.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	for i := 1; i <= attempts; i++ {
		log.Info().Int("attempt", i).Int("of", attempts).Msg("connecting to journal database")

		db, err = gorm.Open(dialector, cfg)
		if err == nil {
			log.Info().Msg("connected to journal database")
			break
		}

		log.Warn().Err(err).Msg("journal database not reachable")
		if i < attempts {
			time.Sleep(delay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to journal db after %d attempts: %w", attempts, err)
	}

	// миграции
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}
