// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ReminderBirthday     = "birthday"
	ReminderLeadDays     = 7
	defaultBirthdayText  = "Hi [CustomerName], we wish you a very happy birthday! Enjoy 20% off on your next visit this month!"
	reminderStatusSent   = "sent"
	reminderStatusFailed = "failed"
)

type ReminderSummary struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

type ReminderService struct {
	db       *gorm.DB
	sms      SMSSender
	clock    Clock
	template string
	logger   *zap.Logger
}

func NewReminderService(db *gorm.DB, sms SMSSender, clock Clock, log *zap.Logger) *ReminderService {
	if clock == nil {
		clock = SystemClock
	}
	return &ReminderService{db: db, sms: sms, clock: clock, template: defaultBirthdayText, logger: logger.OrNop(log)}
}

// SendBirthdayReminders texts every live, active customer whose birthday is
// ReminderLeadDays away. Each attempt is logged; customers already reminded
// this year are skipped so reruns are harmless.
func (s *ReminderService) SendBirthdayReminders(ctx context.Context) (ReminderSummary, error) {
	var summary ReminderSummary
	now := s.clock.Now()
	target := now.AddDate(0, 0, ReminderLeadDays)

	customers, err := upcomingBirthdays(s.db.WithContext(ctx), target)
	if err != nil {
		return summary, fmt.Errorf("load upcoming birthdays: %w", err)
	}
	summary.Candidates = len(customers)

	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	for _, customer := range customers {
		var already int64
		if err := s.db.WithContext(ctx).Model(&models.ReminderLog{}).
			Where("customer_id = ? AND type = ? AND status = ? AND sent_at >= ?", customer.ID, ReminderBirthday, reminderStatusSent, yearStart).
			Count(&already).Error; err != nil {
			return summary, err
		}
		if already > 0 {
			summary.Skipped++
			continue
		}

		name := "there"
		if customer.FullName != nil && *customer.FullName != "" {
			name = *customer.FullName
		}
		message := strings.ReplaceAll(s.template, "[CustomerName]", name)

		entry := models.ReminderLog{
			CustomerID: customer.ID,
			Type:       ReminderBirthday,
			Message:    message,
			Status:     reminderStatusSent,
			Channel:    "sms",
			SentAt:     s.clock.Now(),
		}
		if err := s.sms.Send(ctx, *customer.PhoneNumber, message); err != nil {
			entry.Status = reminderStatusFailed
			entry.ErrorMessage = err.Error()
			summary.Failed++
			s.logger.Warn("birthday reminder failed", zap.String("customer_id", customer.ID.String()), zap.Error(err))
		} else {
			summary.Sent++
		}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			s.logger.Error("failed to write reminder log", zap.String("customer_id", customer.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("birthday reminders processed",
		zap.Int("candidates", summary.Candidates),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// ListLogs pages through delivery attempts, newest first.
func (s *ReminderService) ListLogs(ctx context.Context, page, pageSize int) (repository.Page[models.ReminderLog], error) {
	page, pageSize, offset := repository.NormalizePage(page, pageSize)
	db := s.db.WithContext(ctx).Model(&models.ReminderLog{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return repository.Page[models.ReminderLog]{}, err
	}
	var logs []models.ReminderLog
	if err := s.db.WithContext(ctx).Order("sent_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return repository.Page[models.ReminderLog]{}, err
	}
	return repository.NewPage(logs, total, page, pageSize), nil
}

// upcomingBirthdays matches month and day in Go so the query stays portable
// across database engines.
func upcomingBirthdays(db *gorm.DB, target time.Time) ([]models.Customer, error) {
	var candidates []models.Customer
	err := db.
		Where("is_active = ? AND date_of_birth IS NOT NULL AND phone_number IS NOT NULL", true).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	out := candidates[:0]
	for _, c := range candidates {
		if birthdayOn(time.Time(*c.DateOfBirth), target) {
			out = append(out, c)
		}
	}
	return out, nil
}

// birthdayOn reports whether dob falls on day's month and day. February 29
// birthdays are celebrated on February 28 in common years.
func birthdayOn(dob, day time.Time) bool {
	month, d := dob.Month(), dob.Day()
	if month == time.February && d == 29 && !isLeap(day.Year()) {
		d = 28
	}
	return month == day.Month() && d == day.Day()
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
