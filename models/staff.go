package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EmploymentStatus string

const (
	EmploymentProbation EmploymentStatus = "probation"
	EmploymentActive    EmploymentStatus = "active"
	EmploymentSuspended EmploymentStatus = "suspended"
	EmploymentResigned  EmploymentStatus = "resigned"
)

func (s EmploymentStatus) Valid() bool {
	switch s {
	case EmploymentProbation, EmploymentActive, EmploymentSuspended, EmploymentResigned:
		return true
	}
	return false
}

type StaffProfile struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID        uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"accountId"`
	FullName         string           `gorm:"type:varchar(255);not null" json:"fullName"`
	PhoneNumber      string           `gorm:"type:varchar(20);uniqueIndex;not null" json:"phoneNumber"`
	Position         string           `gorm:"type:varchar(100)" json:"position"`
	HireDate         *datatypes.Date  `json:"hireDate"`
	EmploymentStatus EmploymentStatus `gorm:"type:varchar(20);not null;index" json:"employmentStatus"`
	Notes            string           `gorm:"type:text" json:"notes"`

	Account   *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Services  []Service       `gorm:"many2many:staff_services;" json:"services,omitempty"`
	Schedules []StaffSchedule `gorm:"foreignKey:StaffID" json:"schedules,omitempty"`
	TimeOffs  []StaffTimeOff  `gorm:"foreignKey:StaffID" json:"timeOffs,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *StaffProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
