package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const daysPerWeek = 7

// WeekdayEntry describes one day of a weekly schedule. Times are "HH:MM".
type WeekdayEntry struct {
	DayOfWeek int    `json:"dayOfWeek"`
	IsActive  bool   `json:"isActive"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Note      string `json:"note"`
}

type UpdateScheduleInput struct {
	IsActive  *bool   `json:"isActive"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Note      *string `json:"note"`
}

type OverrideInput struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Note      string `json:"note"`
}

// Availability is the effective working window of a staff member on a date.
type Availability struct {
	StaffID   uuid.UUID           `json:"staffId"`
	Date      string              `json:"date"`
	Available bool                `json:"available"`
	Source    models.ScheduleType `json:"source,omitempty"`
	StartTime *datatypes.Time     `json:"startTime"`
	EndTime   *datatypes.Time     `json:"endTime"`
	Note      string              `json:"note,omitempty"`
}

type ScheduleService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewScheduleService(db *gorm.DB, log *zap.Logger) *ScheduleService {
	return &ScheduleService{db: db, logger: logger.OrNop(log)}
}

func (s *ScheduleService) ensureStaff(tx *gorm.DB, staffID uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.StaffProfile{}).Where("id = ?", staffID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound(entityStaff)
	}
	return nil
}

func workingRows(tx *gorm.DB, staffID uuid.UUID) ([]models.StaffSchedule, error) {
	var rows []models.StaffSchedule
	err := tx.Where("staff_id = ? AND schedule_type = ?", staffID, models.ScheduleWorking).
		Order("day_of_week ASC").
		Find(&rows).Error
	return rows, err
}

// GetOrCreateWeek returns the seven working rows of a staff member,
// persisting inactive placeholders the first time it is asked.
func (s *ScheduleService) GetOrCreateWeek(ctx context.Context, staffID uuid.UUID) ([]models.StaffSchedule, error) {
	var week []models.StaffSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureStaff(tx, staffID); err != nil {
			return err
		}
		rows, err := workingRows(tx, staffID)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			week = rows
			return nil
		}

		rows = make([]models.StaffSchedule, 0, daysPerWeek)
		for day := 1; day <= daysPerWeek; day++ {
			d := day
			rows = append(rows, models.StaffSchedule{
				StaffID:      staffID,
				ScheduleType: models.ScheduleWorking,
				DayOfWeek:    &d,
				IsActive:     false,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		week = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return week, nil
}

// parseWindow validates an entry's times against its active flag. Inactive
// days never carry times.
func parseWindow(active bool, start, end string) (*datatypes.Time, *datatypes.Time, error) {
	if !active {
		return nil, nil, nil
	}
	if start == "" || end == "" {
		return nil, nil, errs.Validation("Active days require both start and end time")
	}
	st, err := utils.ParseClock(start)
	if err != nil {
		return nil, nil, errs.Validation("%s", err.Error())
	}
	et, err := utils.ParseClock(end)
	if err != nil {
		return nil, nil, errs.Validation("%s", err.Error())
	}
	if st >= et {
		return nil, nil, errs.Validation("Start time must be before end time")
	}
	return &st, &et, nil
}

// validateWeek checks that entries hold exactly one entry per ISO weekday.
func validateWeek(entries []WeekdayEntry) error {
	if len(entries) != daysPerWeek {
		return errs.Validation("Schedule must contain exactly %d days", daysPerWeek)
	}
	seen := make(map[int]bool, daysPerWeek)
	for _, e := range entries {
		if e.DayOfWeek < 1 || e.DayOfWeek > daysPerWeek {
			return errs.Validation("Invalid day of week: %d", e.DayOfWeek)
		}
		if seen[e.DayOfWeek] {
			return errs.Validation("Duplicate day of week: %d", e.DayOfWeek)
		}
		seen[e.DayOfWeek] = true
	}
	return nil
}

// ReplaceWeek swaps the whole weekly schedule in one transaction.
func (s *ScheduleService) ReplaceWeek(ctx context.Context, staffID uuid.UUID, entries []WeekdayEntry) ([]models.StaffSchedule, error) {
	if err := validateWeek(entries); err != nil {
		return nil, err
	}
	rows := make([]models.StaffSchedule, 0, daysPerWeek)
	for _, e := range entries {
		start, end, err := parseWindow(e.IsActive, e.StartTime, e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", e.DayOfWeek, err)
		}
		d := e.DayOfWeek
		rows = append(rows, models.StaffSchedule{
			StaffID:      staffID,
			ScheduleType: models.ScheduleWorking,
			DayOfWeek:    &d,
			StartTime:    start,
			EndTime:      end,
			IsActive:     e.IsActive,
			Note:         e.Note,
		})
	}

	var week []models.StaffSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureStaff(tx, staffID); err != nil {
			return err
		}
		if err := tx.Where("staff_id = ? AND schedule_type = ?", staffID, models.ScheduleWorking).
			Delete(&models.StaffSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		var err error
		week, err = workingRows(tx, staffID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("weekly schedule replaced", zap.String("staff_id", staffID.String()))
	return week, nil
}

// UpdateEntry patches a single schedule row. Deactivating a row clears its
// times; an active row must end up with start < end.
func (s *ScheduleService) UpdateEntry(ctx context.Context, id uuid.UUID, in UpdateScheduleInput) (*models.StaffSchedule, error) {
	var updated models.StaffSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.StaffSchedule
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Schedule")
			}
			return err
		}

		active := row.IsActive
		if in.IsActive != nil {
			active = *in.IsActive
		}
		start, end := clockString(row.StartTime), clockString(row.EndTime)
		if in.StartTime != nil {
			start = *in.StartTime
		}
		if in.EndTime != nil {
			end = *in.EndTime
		}
		st, et, err := parseWindow(active, start, end)
		if err != nil {
			return err
		}

		patch := map[string]any{
			"is_active":  active,
			"start_time": st,
			"end_time":   et,
		}
		if in.Note != nil {
			patch["note"] = *in.Note
		}
		if err := tx.Model(&models.StaffSchedule{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return err
		}
		// fresh struct: scanning NULL into a populated pointer keeps the old value
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func clockString(t *datatypes.Time) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// CreateOverride records custom hours for a single date. Dates blocked by
// active time off, or already covered by an active override, are refused.
func (s *ScheduleService) CreateOverride(ctx context.Context, staffID uuid.UUID, in OverrideInput) (*models.StaffSchedule, error) {
	day, err := utils.ParseDate(in.Date)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	start, end, err := parseWindow(true, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	date := utils.NewDate(day)

	row := &models.StaffSchedule{
		StaffID:      staffID,
		ScheduleType: models.ScheduleOverride,
		SpecificDate: &date,
		StartTime:    start,
		EndTime:      end,
		IsActive:     true,
		Note:         in.Note,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureStaff(tx, staffID); err != nil {
			return err
		}

		var existing []models.StaffSchedule
		if err := tx.Where("staff_id = ? AND specific_date = ? AND is_active = ? AND schedule_type IN ?", staffID, date, true,
			[]models.ScheduleType{models.ScheduleTimeOff, models.ScheduleOverride}).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, e := range existing {
			if e.ScheduleType == models.ScheduleTimeOff {
				return errs.Conflict("Staff member is on leave on %s", in.Date)
			}
			if overlaps(e.StartTime, e.EndTime, start, end) {
				return errs.Conflict("Override overlaps an existing override on %s", in.Date)
			}
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func overlaps(aStart, aEnd, bStart, bEnd *datatypes.Time) bool {
	if aStart == nil || aEnd == nil || bStart == nil || bEnd == nil {
		return true
	}
	return *aStart < *bEnd && *bStart < *aEnd
}

// ListRange returns the date-specific rows (time off and overrides) between
// from and to inclusive, ordered by date.
func (s *ScheduleService) ListRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]models.StaffSchedule, error) {
	if to.Before(from) {
		return nil, errs.Validation("End date must not be before start date")
	}
	if err := s.ensureStaff(s.db.WithContext(ctx), staffID); err != nil {
		return nil, err
	}
	var rows []models.StaffSchedule
	err := s.db.WithContext(ctx).
		Where("staff_id = ? AND schedule_type <> ? AND specific_date BETWEEN ? AND ?",
			staffID, models.ScheduleWorking, utils.NewDate(from), utils.NewDate(to)).
		Order("specific_date ASC, start_time ASC").
		Find(&rows).Error
	return rows, err
}

// Availability resolves the working window for one date. Time off wins over
// an override, which wins over the weekly schedule. Deactivated date rows are
// ignored.
func (s *ScheduleService) Availability(ctx context.Context, staffID uuid.UUID, day time.Time) (*Availability, error) {
	day = utils.BeginningOfDay(day)
	out := &Availability{StaffID: staffID, Date: day.Format(utils.DateLayout)}

	db := s.db.WithContext(ctx)
	if err := s.ensureStaff(db, staffID); err != nil {
		return nil, err
	}

	var specific []models.StaffSchedule
	if err := db.Where("staff_id = ? AND specific_date = ? AND schedule_type <> ? AND is_active = ?", staffID, utils.NewDate(day), models.ScheduleWorking, true).
		Order("start_time ASC").
		Find(&specific).Error; err != nil {
		return nil, err
	}
	for _, r := range specific {
		if r.ScheduleType == models.ScheduleTimeOff {
			out.Source = models.ScheduleTimeOff
			out.Note = r.Note
			return out, nil
		}
	}
	if len(specific) > 0 {
		r := specific[0]
		out.Available = true
		out.Source = models.ScheduleOverride
		out.StartTime, out.EndTime, out.Note = r.StartTime, r.EndTime, r.Note
		return out, nil
	}

	var weekly models.StaffSchedule
	err := db.Where("staff_id = ? AND schedule_type = ? AND day_of_week = ?", staffID, models.ScheduleWorking, utils.ISOWeekday(day)).
		First(&weekly).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.Source = models.ScheduleWorking
	if weekly.IsActive {
		out.Available = true
		out.StartTime, out.EndTime = weekly.StartTime, weekly.EndTime
	}
	out.Note = weekly.Note
	return out, nil
}
