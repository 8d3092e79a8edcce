package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/repository"
	"spacrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const entityCustomer = "Customer"

type CreateCustomerInput struct {
	FullName         string `json:"fullName"`
	PhoneNumber      string `json:"phoneNumber"`
	DateOfBirth      string `json:"dateOfBirth"` // YYYY-MM-DD
	Gender           string `json:"gender"`
	Address          string `json:"address"`
	Notes            string `json:"notes"`
	SkinType         string `json:"skinType"`
	HealthConditions string `json:"healthConditions"`
}

// UpdateCustomerInput uses pointers so that absent fields stay untouched.
type UpdateCustomerInput struct {
	FullName         *string `json:"fullName"`
	PhoneNumber      *string `json:"phoneNumber"`
	DateOfBirth      *string `json:"dateOfBirth"`
	Gender           *string `json:"gender"`
	Address          *string `json:"address"`
	Notes            *string `json:"notes"`
	SkinType         *string `json:"skinType"`
	HealthConditions *string `json:"healthConditions"`
	IsActive         *bool   `json:"isActive"`
}

type CustomerService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCustomerService(db *gorm.DB, log *zap.Logger) *CustomerService {
	return &CustomerService{db: db, logger: logger.OrNop(log)}
}

func (s *CustomerService) withDB(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db, logger: s.logger}
}

// CreateWalkIn registers a customer met at the front desk. Name and phone are
// required and the phone must not belong to another live profile.
func (s *CustomerService) CreateWalkIn(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, errs.Validation("Full name is required")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return nil, errs.Validation("Phone number is required")
	}
	phone, err := utils.NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	customer, err := newCustomer(in)
	if err != nil {
		return nil, err
	}
	customer.FullName = &name
	customer.PhoneNumber = &phone

	if err := s.create(ctx, customer); err != nil {
		return nil, err
	}
	s.logger.Info("walk-in customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

// CreateStub creates the placeholder profile owned by a freshly registered
// account. Name and phone may be filled in later.
func (s *CustomerService) CreateStub(ctx context.Context, accountID uuid.UUID, in CreateCustomerInput) (*models.Customer, error) {
	customer, err := newCustomer(in)
	if err != nil {
		return nil, err
	}
	customer.AccountID = &accountID

	if name := strings.TrimSpace(in.FullName); name != "" {
		customer.FullName = &name
	}
	if strings.TrimSpace(in.PhoneNumber) != "" {
		phone, err := utils.NormalizePhone(in.PhoneNumber)
		if err != nil {
			return nil, err
		}
		customer.PhoneNumber = &phone
	}

	if err := s.create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) create(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customer.PhoneNumber != nil {
			taken, err := phoneTaken(tx, *customer.PhoneNumber, uuid.Nil)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("Customer with this phone number already exists")
			}
		}
		if err := tx.Create(customer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("Customer with this phone number already exists")
			}
			return err
		}
		return nil
	})
}

func newCustomer(in CreateCustomerInput) (*models.Customer, error) {
	c := &models.Customer{
		Gender:           in.Gender,
		Address:          in.Address,
		Notes:            in.Notes,
		SkinType:         in.SkinType,
		HealthConditions: in.HealthConditions,
		IsActive:         true,
	}
	if in.DateOfBirth != "" {
		dob, err := parseBirthDate(in.DateOfBirth)
		if err != nil {
			return nil, err
		}
		c.DateOfBirth = dob
	}
	return c, nil
}

func parseBirthDate(s string) (*datatypes.Date, error) {
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	if t.After(time.Now()) {
		return nil, errs.Validation("Date of birth cannot be in the future")
	}
	d := datatypes.Date(t)
	return &d, nil
}

// phoneTaken reports whether a live customer other than exceptID holds phone.
func phoneTaken(tx *gorm.DB, phone string, exceptID uuid.UUID) (bool, error) {
	q := tx.Model(&models.Customer{}).Where("phone_number = ?", phone)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *CustomerService) scope(ctx context.Context, includeDeleted bool) *gorm.DB {
	q := s.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped()
	}
	return q
}

func (s *CustomerService) first(q *gorm.DB) (*models.Customer, error) {
	var c models.Customer
	if err := q.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound(entityCustomer)
		}
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.Customer, error) {
	return s.first(s.scope(ctx, includeDeleted).Where("id = ?", id))
}

func (s *CustomerService) GetByAccount(ctx context.Context, accountID uuid.UUID, includeDeleted bool) (*models.Customer, error) {
	return s.first(s.scope(ctx, includeDeleted).Where("account_id = ?", accountID).Order("created_at DESC"))
}

func (s *CustomerService) GetByPhone(ctx context.Context, phone string, includeDeleted bool) (*models.Customer, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return s.first(s.scope(ctx, includeDeleted).Where("phone_number = ?", normalized).Order("created_at DESC"))
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, in UpdateCustomerInput) (*models.Customer, error) {
	var updated *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.withDB(tx).GetByID(ctx, id, false)
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
			if customer.PhoneNumber == nil || *customer.PhoneNumber != phone {
				taken, err := phoneTaken(tx, phone, customer.ID)
				if err != nil {
					return err
				}
				if taken {
					return errs.Conflict("Another customer with this phone number already exists")
				}
			}
			patch["phone_number"] = phone
		}
		if in.DateOfBirth != nil {
			if *in.DateOfBirth == "" {
				patch["date_of_birth"] = nil
			} else {
				dob, err := parseBirthDate(*in.DateOfBirth)
				if err != nil {
					return err
				}
				patch["date_of_birth"] = *dob
			}
		}
		if in.Gender != nil {
			patch["gender"] = *in.Gender
		}
		if in.Address != nil {
			patch["address"] = *in.Address
		}
		if in.Notes != nil {
			patch["notes"] = *in.Notes
		}
		if in.SkinType != nil {
			patch["skin_type"] = *in.SkinType
		}
		if in.HealthConditions != nil {
			patch["health_conditions"] = *in.HealthConditions
		}
		if in.IsActive != nil {
			patch["is_active"] = *in.IsActive
		}

		if len(patch) > 0 {
			if err := tx.Model(customer).Updates(patch).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errs.Conflict("Another customer with this phone number already exists")
				}
				return err
			}
		}
		updated, err = s.withDB(tx).GetByID(ctx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes a live customer. Deleting twice is a not-found.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound(entityCustomer)
	}
	return nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Restore revives a soft-deleted customer unless its phone number has been
// claimed by a live profile in the meantime.
func (s *CustomerService) Restore(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var restored *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		err := tx.Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound(entityCustomer)
		}
		if err != nil {
			return err
		}

		if c.PhoneNumber != nil {
			taken, err := phoneTaken(tx, *c.PhoneNumber, c.ID)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("Phone number is now used by another customer")
			}
		}
		if c.AccountID != nil {
			var n int64
			if err := tx.Model(&models.Customer{}).Where("account_id = ?", *c.AccountID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errs.Conflict("Account already has an active customer profile")
			}
		}

		if err := tx.Unscoped().Model(&c).Update("deleted_at", nil).Error; err != nil {
			return err
		}
		restored, err = s.withDB(tx).GetByID(ctx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// Search matches query case-insensitively against name or phone.
func (s *CustomerService) Search(ctx context.Context, query string, page, pageSize int) (repository.Page[models.Customer], error) {
	page, pageSize, offset := repository.NormalizePage(page, pageSize)
	query = strings.TrimSpace(query)

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Customer{})
		if query != "" {
			like := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
			q = q.Where(`LOWER(full_name) LIKE ? ESCAPE '\' OR phone_number LIKE ? ESCAPE '\'`, like, like)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return repository.Page[models.Customer]{}, err
	}

	var customers []models.Customer
	if err := base().Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&customers).Error; err != nil {
		return repository.Page[models.Customer]{}, err
	}
	return repository.NewPage(customers, total, page, pageSize), nil
}
