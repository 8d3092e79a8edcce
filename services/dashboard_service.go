package services

import (
	"context"

	"spacrm-backend/models"
	"spacrm-backend/utils"

	"gorm.io/gorm"
)

type DashboardOverview struct {
	TotalCustomers      int64 `json:"totalCustomers"`
	WalkInsAwaitingLink int64 `json:"walkInsAwaitingLink"`
	ActiveStaff         int64 `json:"activeStaff"`
	PendingTimeOff      int64 `json:"pendingTimeOff"`
	StaffOnLeaveToday   int64 `json:"staffOnLeaveToday"`
	UpcomingBirthdays   int   `json:"upcomingBirthdays"`
}

type DashboardService struct {
	db    *gorm.DB
	clock Clock
}

func NewDashboardService(db *gorm.DB, clock Clock) *DashboardService {
	if clock == nil {
		clock = SystemClock
	}
	return &DashboardService{db: db, clock: clock}
}

func (s *DashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	db := s.db.WithContext(ctx)
	out := &DashboardOverview{}
	today := utils.NewDate(s.clock.Now().UTC())

	if err := db.Model(&models.Customer{}).Count(&out.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).
		Where("account_id IS NULL AND phone_number IS NOT NULL").
		Count(&out.WalkInsAwaitingLink).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.StaffProfile{}).
		Where("employment_status IN ?", []models.EmploymentStatus{models.EmploymentActive, models.EmploymentProbation}).
		Count(&out.ActiveStaff).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.StaffTimeOff{}).
		Where("status = ?", models.TimeOffPending).
		Count(&out.PendingTimeOff).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.StaffSchedule{}).
		Where("schedule_type = ? AND specific_date = ?", models.ScheduleTimeOff, today).
		Distinct("staff_id").
		Count(&out.StaffOnLeaveToday).Error; err != nil {
		return nil, err
	}

	birthdays, err := upcomingBirthdays(db, s.clock.Now().AddDate(0, 0, ReminderLeadDays))
	if err != nil {
		return nil, err
	}
	out.UpcomingBirthdays = len(birthdays)
	return out, nil
}
