package services

import (
	"context"
	"errors"
	"strings"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/repository"
	"spacrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entityStaff = "Staff"

type CreateStaffInput struct {
	AccountID        uuid.UUID               `json:"accountId" binding:"required"`
	FullName         string                  `json:"fullName" binding:"required"`
	PhoneNumber      string                  `json:"phoneNumber" binding:"required"`
	Position         string                  `json:"position"`
	HireDate         string                  `json:"hireDate"`
	EmploymentStatus models.EmploymentStatus `json:"employmentStatus"`
	Notes            string                  `json:"notes"`
}

type UpdateStaffInput struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	Position    *string `json:"position"`
	HireDate    *string `json:"hireDate"`
	Notes       *string `json:"notes"`
}

type StaffService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStaffService(db *gorm.DB, log *zap.Logger) *StaffService {
	return &StaffService{db: db, logger: logger.OrNop(log)}
}

// Create promotes an active account to staff. The profile insert and the
// role change commit together.
func (s *StaffService) Create(ctx context.Context, in CreateStaffInput) (*models.StaffProfile, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, errs.Validation("Full name is required")
	}
	phone, err := utils.NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	status := in.EmploymentStatus
	if status == "" {
		status = models.EmploymentProbation
	}
	if !status.Valid() || status == models.EmploymentResigned {
		return nil, errs.Validation("Invalid employment status: %s", status)
	}

	profile := &models.StaffProfile{
		AccountID:        in.AccountID,
		FullName:         name,
		PhoneNumber:      phone,
		Position:         in.Position,
		EmploymentStatus: status,
		Notes:            in.Notes,
	}
	if in.HireDate != "" {
		t, err := utils.ParseDate(in.HireDate)
		if err != nil {
			return nil, errs.Validation("%s", err.Error())
		}
		d := utils.NewDate(t)
		profile.HireDate = &d
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ?", in.AccountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Account")
			}
			return err
		}
		if !account.IsActive {
			return errs.Validation("Account is not active")
		}

		var n int64
		if err := tx.Model(&models.StaffProfile{}).Where("account_id = ?", in.AccountID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errs.Conflict("Account already has a staff profile")
		}
		if err := tx.Model(&models.StaffProfile{}).Where("phone_number = ?", phone).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errs.Conflict("Staff with this phone number already exists")
		}

		if err := tx.Create(profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("Staff profile already exists")
			}
			return err
		}
		if account.Role != models.RoleAdmin {
			if err := tx.Model(&account).Update("role", models.RoleStaff).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff profile created",
		zap.String("staff_id", profile.ID.String()),
		zap.String("account_id", in.AccountID.String()),
	)
	return profile, nil
}

func (s *StaffService) first(q *gorm.DB) (*models.StaffProfile, error) {
	var p models.StaffProfile
	if err := q.Preload("Services").First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound(entityStaff)
		}
		return nil, err
	}
	return &p, nil
}

func (s *StaffService) Get(ctx context.Context, id uuid.UUID) (*models.StaffProfile, error) {
	return s.first(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *StaffService) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.StaffProfile, error) {
	return s.first(s.db.WithContext(ctx).Where("account_id = ?", accountID))
}

// List pages through staff, optionally filtered by employment status.
func (s *StaffService) List(ctx context.Context, page, pageSize int, status models.EmploymentStatus) (repository.Page[models.StaffProfile], error) {
	page, pageSize, offset := repository.NormalizePage(page, pageSize)
	if status != "" && !status.Valid() {
		return repository.Page[models.StaffProfile]{}, errs.Validation("Invalid employment status: %s", status)
	}

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.StaffProfile{})
		if status != "" {
			q = q.Where("employment_status = ?", status)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return repository.Page[models.StaffProfile]{}, err
	}
	var staff []models.StaffProfile
	if err := base().Order("full_name ASC").Offset(offset).Limit(pageSize).Find(&staff).Error; err != nil {
		return repository.Page[models.StaffProfile]{}, err
	}
	return repository.NewPage(staff, total, page, pageSize), nil
}

func (s *StaffService) Update(ctx context.Context, id uuid.UUID, in UpdateStaffInput) (*models.StaffProfile, error) {
	var updated *models.StaffProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.first(tx.Where("id = ?", id))
		if err != nil {
			return err
		}

		patch := map[string]any{}
		if in.FullName != nil {
			name := strings.TrimSpace(*in.FullName)
			if name == "" {
				return errs.Validation("Full name cannot be empty")
			}
			patch["full_name"] = name
		}
		if in.PhoneNumber != nil {
			phone, err := utils.NormalizePhone(*in.PhoneNumber)
			if err != nil {
				return err
			}
			if phone != profile.PhoneNumber {
				var n int64
				if err := tx.Model(&models.StaffProfile{}).Where("phone_number = ? AND id <> ?", phone, id).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					return errs.Conflict("Staff with this phone number already exists")
				}
			}
			patch["phone_number"] = phone
		}
		if in.Position != nil {
			patch["position"] = *in.Position
		}
		if in.HireDate != nil {
			if *in.HireDate == "" {
				patch["hire_date"] = nil
			} else {
				t, err := utils.ParseDate(*in.HireDate)
				if err != nil {
					return errs.Validation("%s", err.Error())
				}
				patch["hire_date"] = utils.NewDate(t)
			}
		}
		if in.Notes != nil {
			patch["notes"] = *in.Notes
		}

		if len(patch) > 0 {
			if err := tx.Model(&models.StaffProfile{}).Where("id = ?", id).Updates(patch).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errs.Conflict("Staff with this phone number already exists")
				}
				return err
			}
		}
		updated, err = s.first(tx.Where("id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus moves a staff member between probation, active and
// suspended. Resigned staff cannot be changed.
func (s *StaffService) ChangeStatus(ctx context.Context, id uuid.UUID, status models.EmploymentStatus) (*models.StaffProfile, error) {
	if !status.Valid() {
		return nil, errs.Validation("Invalid employment status: %s", status)
	}
	if status == models.EmploymentResigned {
		return nil, errs.Validation("Use offboarding to mark staff as resigned")
	}

	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.EmploymentStatus == models.EmploymentResigned {
		return nil, errs.Conflict("Staff member has resigned")
	}
	if err := s.db.WithContext(ctx).Model(&models.StaffProfile{}).Where("id = ?", id).Update("employment_status", status).Error; err != nil {
		return nil, err
	}
	profile.EmploymentStatus = status
	return profile, nil
}

// Offboard marks the staff member resigned and deactivates the account.
func (s *StaffService) Offboard(ctx context.Context, id uuid.UUID, note string) (*models.StaffProfile, error) {
	var profile *models.StaffProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.first(tx.Where("id = ?", id))
		if err != nil {
			return err
		}
		if p.EmploymentStatus == models.EmploymentResigned {
			return errs.Conflict("Staff member has already been offboarded")
		}

		patch := map[string]any{"employment_status": models.EmploymentResigned}
		if note = strings.TrimSpace(note); note != "" {
			patch["notes"] = strings.TrimSpace(p.Notes + "\n" + note)
		}
		if err := tx.Model(&models.StaffProfile{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", p.AccountID).Update("is_active", false).Error; err != nil {
			return err
		}
		profile, err = s.first(tx.Where("id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("staff offboarded", zap.String("staff_id", id.String()))
	return profile, nil
}

// AssignServices replaces the set of services the staff member performs.
func (s *StaffService) AssignServices(ctx context.Context, staffID uuid.UUID, serviceIDs []uuid.UUID) (*models.StaffProfile, error) {
	var profile *models.StaffProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.first(tx.Where("id = ?", staffID))
		if err != nil {
			return err
		}

		services, err := liveServices(tx, serviceIDs)
		if err != nil {
			return err
		}
		assoc := tx.Model(p).Association("Services")
		if len(services) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(services)
		}
		if err != nil {
			return err
		}
		profile, err = s.first(tx.Where("id = ?", staffID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// liveServices loads every id, failing when one is missing or deleted.
func liveServices(tx *gorm.DB, ids []uuid.UUID) ([]models.Service, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []models.Service{}, nil
	}

	var services []models.Service
	if err := tx.Where("id IN ?", unique).Find(&services).Error; err != nil {
		return nil, err
	}
	if len(services) != len(unique) {
		return nil, errs.NotFound("Service")
	}
	return services, nil
}
