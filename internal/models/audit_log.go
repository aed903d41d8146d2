package models

import "time"

// AuditLog — запись журнала решений, принятых через веб-интерфейс.
type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID   int    `gorm:"index"`
	Username string `gorm:"size:100;not null"`

	Entity   string `gorm:"size:50;not null"` // "company", "region", "service"
	EntityID int
	Action   string `gorm:"size:50;not null"` // "create", "status_change" и т.п.
	Details  string `gorm:"type:text"`
}
