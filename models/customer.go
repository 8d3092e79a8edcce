package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileKind string

const (
	ProfileStub       ProfileKind = "stub"
	ProfileWalkIn     ProfileKind = "walk_in"
	ProfileLinked     ProfileKind = "linked"
	ProfileIncomplete ProfileKind = "incomplete"
)

// Customer phone numbers and account ids are unique among live rows only,
// so a soft-deleted profile never blocks a new one.
type Customer struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_customers_account_live,where:deleted_at IS NULL" json:"accountId"`

	FullName         *string         `gorm:"type:varchar(255)" json:"fullName"`
	PhoneNumber      *string         `gorm:"type:varchar(20);uniqueIndex:idx_customers_phone_live,where:deleted_at IS NULL" json:"phoneNumber"`
	DateOfBirth      *datatypes.Date `json:"dateOfBirth"`
	Gender           string          `gorm:"type:varchar(20)" json:"gender"`
	Address          string          `json:"address"`
	Notes            string          `gorm:"type:text" json:"notes"`
	SkinType         string          `gorm:"type:varchar(50)" json:"skinType"`
	HealthConditions string          `gorm:"type:text" json:"healthConditions"`
	IsActive         bool            `json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// Kind derives which of the profile states the row is in from the two
// nullable key fields.
func (c *Customer) Kind() ProfileKind {
	hasAccount := c.AccountID != nil
	hasPhone := c.PhoneNumber != nil && *c.PhoneNumber != ""
	switch {
	case hasAccount && hasPhone:
		return ProfileLinked
	case hasAccount:
		return ProfileStub
	case hasPhone:
		return ProfileWalkIn
	default:
		return ProfileIncomplete
	}
}
