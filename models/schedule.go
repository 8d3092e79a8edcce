package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScheduleType string

const (
	ScheduleWorking  ScheduleType = "working"
	ScheduleTimeOff  ScheduleType = "time_off"
	ScheduleOverride ScheduleType = "override"
)

// StaffSchedule rows of type working carry DayOfWeek (1 = Monday .. 7 =
// Sunday); time_off and override rows carry SpecificDate instead.
type StaffSchedule struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StaffID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_staff_working_day,priority:1,where:schedule_type = 'working'" json:"staffId"`
	ScheduleType ScheduleType    `gorm:"type:varchar(20);not null;index" json:"scheduleType"`
	DayOfWeek    *int            `gorm:"uniqueIndex:idx_staff_working_day,priority:2,where:schedule_type = 'working'" json:"dayOfWeek"`
	SpecificDate *datatypes.Date `gorm:"index" json:"specificDate"`
	StartTime    *datatypes.Time `json:"startTime"`
	EndTime      *datatypes.Time `json:"endTime"`
	IsActive     bool            `json:"isActive"`
	Note         string          `gorm:"type:text" json:"note"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *StaffSchedule) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// DefaultSchedule is the older account-scoped weekly availability.
type DefaultSchedule struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_default_schedule_day,priority:1" json:"accountId"`
	DayOfWeek int             `gorm:"not null;uniqueIndex:idx_default_schedule_day,priority:2" json:"dayOfWeek"`
	IsActive  bool            `json:"isActive"`
	StartTime *datatypes.Time `json:"startTime"`
	EndTime   *datatypes.Time `json:"endTime"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *DefaultSchedule) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
