package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffRejected TimeOffStatus = "rejected"
)

type StaffTimeOff struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StaffID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"staffId"`
	StartDate datatypes.Date `gorm:"not null" json:"startDate"`
	EndDate   datatypes.Date `gorm:"not null" json:"endDate"`
	Reason    string         `gorm:"type:text" json:"reason"`
	Status    TimeOffStatus  `gorm:"type:varchar(20);not null;index" json:"status"`

	// Set only when the request is decided.
	ApproverID   *uuid.UUID `gorm:"type:uuid" json:"approverId"`
	ApprovedAt   *time.Time `json:"approvedAt"`
	DecisionNote string     `gorm:"type:text" json:"decisionNote"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *StaffTimeOff) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
