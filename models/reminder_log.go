// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderLog records every reminder delivery attempt.
type ReminderLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Type         string    `gorm:"type:varchar(20)" json:"type"` // birthday
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // sms
	SentAt       time.Time `json:"sentAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return
}
