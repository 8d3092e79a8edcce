package services

import (
	"context"
	"errors"
	"time"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entityTimeOff = "Time-off request"

type TimeOffRequestInput struct {
	StaffID   *uuid.UUID `json:"staffId"`
	StartDate string     `json:"startDate" binding:"required"`
	EndDate   string     `json:"endDate" binding:"required"`
	Reason    string     `json:"reason"`
}

type TimeOffFilter struct {
	StaffID *uuid.UUID
	Status  models.TimeOffStatus
}

type TimeOffService struct {
	db     *gorm.DB
	clock  Clock
	logger *zap.Logger
}

func NewTimeOffService(db *gorm.DB, clock Clock, log *zap.Logger) *TimeOffService {
	if clock == nil {
		clock = SystemClock
	}
	return &TimeOffService{db: db, clock: clock, logger: logger.OrNop(log)}
}

// Request files a pending leave request for the requester's own staff
// profile. Only admins may name another staff member through StaffID.
func (s *TimeOffService) Request(ctx context.Context, requesterID uuid.UUID, requesterRole string, in TimeOffRequestInput) (*models.StaffTimeOff, error) {
	start, err := utils.ParseDate(in.StartDate)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	end, err := utils.ParseDate(in.EndDate)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	if end.Before(start) {
		return nil, errs.Validation("End date must not be before start date")
	}

	db := s.db.WithContext(ctx)
	explicit := in.StaffID != nil && *in.StaffID != uuid.Nil
	var staffID uuid.UUID
	if explicit && requesterRole == models.RoleAdmin {
		var n int64
		if err := db.Model(&models.StaffProfile{}).Where("id = ?", *in.StaffID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errs.NotFound(entityStaff)
		}
		staffID = *in.StaffID
	} else {
		var profile models.StaffProfile
		err := db.Where("account_id = ?", requesterID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Validation("Staff id is required when the requester has no staff profile")
		}
		if err != nil {
			return nil, err
		}
		if explicit && *in.StaffID != profile.ID {
			return nil, errs.Forbidden("Only admins can request time off for another staff member")
		}
		staffID = profile.ID
	}

	req := &models.StaffTimeOff{
		StaffID:   staffID,
		StartDate: utils.NewDate(start),
		EndDate:   utils.NewDate(end),
		Reason:    in.Reason,
		Status:    models.TimeOffPending,
	}
	if err := db.Create(req).Error; err != nil {
		return nil, err
	}
	s.logger.Info("time-off requested",
		zap.String("time_off_id", req.ID.String()),
		zap.String("staff_id", staffID.String()),
	)
	return req, nil
}

func (s *TimeOffService) Get(ctx context.Context, id uuid.UUID) (*models.StaffTimeOff, error) {
	var req models.StaffTimeOff
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound(entityTimeOff)
		}
		return nil, err
	}
	return &req, nil
}

func (s *TimeOffService) List(ctx context.Context, f TimeOffFilter) ([]models.StaffTimeOff, error) {
	q := s.db.WithContext(ctx).Model(&models.StaffTimeOff{})
	if f.StaffID != nil {
		q = q.Where("staff_id = ?", *f.StaffID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []models.StaffTimeOff
	err := q.Order("start_date DESC, created_at DESC").Find(&out).Error
	return out, err
}

// Decide approves or rejects a pending request. Approval also blocks every
// date of the leave in the staff member's schedule, in the same transaction.
func (s *TimeOffService) Decide(ctx context.Context, id, approverID uuid.UUID, status models.TimeOffStatus, note string) (*models.StaffTimeOff, error) {
	if status != models.TimeOffApproved && status != models.TimeOffRejected {
		return nil, errs.Validation("Status must be approved or rejected")
	}

	var req models.StaffTimeOff
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound(entityTimeOff)
			}
			return err
		}
		if req.Status != models.TimeOffPending {
			return errs.Conflict("Time-off request has already been %s", req.Status)
		}

		now := s.clock.Now().UTC()
		res := tx.Model(&models.StaffTimeOff{}).
			Where("id = ? AND status = ?", id, models.TimeOffPending).
			Updates(map[string]any{
				"status":        status,
				"approver_id":   approverID,
				"approved_at":   now,
				"decision_note": note,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Conflict("Time-off request has already been decided")
		}

		if status == models.TimeOffApproved {
			if err := blockDates(tx, req); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).First(&req).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("time-off decided",
		zap.String("time_off_id", id.String()),
		zap.String("status", string(status)),
		zap.String("approver_id", approverID.String()),
	)
	return &req, nil
}

// blockDates inserts one full-day time_off row for every date of the leave.
func blockDates(tx *gorm.DB, req models.StaffTimeOff) error {
	dayStart, _ := utils.ParseClock("00:00")
	dayEnd, _ := utils.ParseClock("23:59")

	dates := utils.EachDate(time.Time(req.StartDate), time.Time(req.EndDate))
	rows := make([]models.StaffSchedule, 0, len(dates))
	for _, d := range dates {
		date := utils.NewDate(d)
		start, end := dayStart, dayEnd
		rows = append(rows, models.StaffSchedule{
			StaffID:      req.StaffID,
			ScheduleType: models.ScheduleTimeOff,
			SpecificDate: &date,
			StartTime:    &start,
			EndTime:      &end,
			IsActive:     true,
			Note:         req.Reason,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
