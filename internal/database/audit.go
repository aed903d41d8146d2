package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wastetrack/internal/models"
)

const (
	EntityCompany = "company"
	EntityRegion  = "region"
	EntityService = "service"
)

// Journal пишет и читает журнал решений.
// Нулевой или nil Journal ничего не пишет.
type Journal struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewJournal(db *gorm.DB, log zerolog.Logger) *Journal {
	return &Journal{db: db, log: log.With().Str("component", "journal").Logger()}
}

func (j *Journal) Enabled() bool { return j != nil && j.db != nil }

// Record never fails the caller: the mutation it describes has already happened.
func (j *Journal) Record(ctx context.Context, actor models.User, entity string, entityID int, action, details string) {
	if !j.Enabled() {
		return
	}
	rec := models.AuditLog{
		UserID:   actor.ID,
		Username: actor.Username,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := j.db.WithContext(ctx).Create(&rec).Error; err != nil {
		j.log.Error().Err(err).Str("entity", entity).Int("entity_id", entityID).Msg("write journal")
	}
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if !j.Enabled() {
		return nil, nil
	}
	var logs []models.AuditLog
	err := j.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return logs, nil
}
