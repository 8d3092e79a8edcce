package services

import (
	"context"
	"fmt"

	"spacrm-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultScheduleService keeps the simple per-account weekly availability.
type DefaultScheduleService struct {
	db *gorm.DB
}

func NewDefaultScheduleService(db *gorm.DB) *DefaultScheduleService {
	return &DefaultScheduleService{db: db}
}

func defaultRows(tx *gorm.DB, accountID uuid.UUID) ([]models.DefaultSchedule, error) {
	var rows []models.DefaultSchedule
	err := tx.Where("account_id = ?", accountID).Order("day_of_week ASC").Find(&rows).Error
	return rows, err
}

// Get returns the account's seven days, creating inactive ones on first use.
func (s *DefaultScheduleService) Get(ctx context.Context, accountID uuid.UUID) ([]models.DefaultSchedule, error) {
	var out []models.DefaultSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := defaultRows(tx, accountID)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			out = rows
			return nil
		}
		rows = make([]models.DefaultSchedule, 0, daysPerWeek)
		for day := 1; day <= daysPerWeek; day++ {
			rows = append(rows, models.DefaultSchedule{AccountID: accountID, DayOfWeek: day})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// Replace overwrites all seven days at once.
func (s *DefaultScheduleService) Replace(ctx context.Context, accountID uuid.UUID, entries []WeekdayEntry) ([]models.DefaultSchedule, error) {
	if err := validateWeek(entries); err != nil {
		return nil, err
	}
	rows := make([]models.DefaultSchedule, 0, daysPerWeek)
	for _, e := range entries {
		start, end, err := parseWindow(e.IsActive, e.StartTime, e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", e.DayOfWeek, err)
		}
		rows = append(rows, models.DefaultSchedule{
			AccountID: accountID,
			DayOfWeek: e.DayOfWeek,
			IsActive:  e.IsActive,
			StartTime: start,
			EndTime:   end,
		})
	}

	var out []models.DefaultSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&models.DefaultSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		var err error
		out, err = defaultRows(tx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
