package services

import (
	"context"
	"errors"
	"strings"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token    string           `json:"token"`
	Account  *models.Account  `json:"account"`
	Customer *models.Customer `json:"customer,omitempty"`
}

// Identity is what the HTTP layer needs to authorize a request.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
}

type AuthService struct {
	db        *gorm.DB
	customers *CustomerService
	clock     Clock
	logger    *zap.Logger
}

func NewAuthService(db *gorm.DB, customers *CustomerService, clock Clock, log *zap.Logger) *AuthService {
	if clock == nil {
		clock = SystemClock
	}
	return &AuthService{db: db, customers: customers, clock: clock, logger: logger.OrNop(log)}
}

// Register creates a customer account together with its stub profile.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, errs.Validation("Email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, errs.Validation("Password must be at least %d characters", minPasswordLength)
	}

	account := &models.Account{
		Email:    email,
		Password: in.Password, // hashed in BeforeCreate
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	var stub *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errs.Conflict("Email already registered")
		}
		if err := tx.Create(account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("Email already registered")
			}
			return err
		}

		var err error
		stub, err = s.customers.withDB(tx).CreateStub(ctx, account.ID, CreateCustomerInput{
			FullName:    in.FullName,
			PhoneNumber: in.PhoneNumber,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account registered", zap.String("account_id", account.ID.String()))
	return &AuthResult{Token: token, Account: account, Customer: stub}, nil
}

// Login returns the same error for an unknown email, a wrong password and a
// deactivated account.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	invalid := errs.Unauthorized("Invalid credentials")

	var account models.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !account.IsActive || !utils.CheckPasswordHash(in.Password, account.Password) {
		return nil, invalid
	}

	token, err := utils.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.db.WithContext(ctx).Model(&account).Update("last_login", now).Error; err != nil {
		s.logger.Warn("failed to record last login", zap.String("account_id", account.ID.String()), zap.Error(err))
	}
	account.LastLogin = &now
	return &AuthResult{Token: token, Account: &account}, nil
}

func (s *AuthService) Identity(ctx context.Context, accountID uuid.UUID) (*Identity, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Account")
		}
		return nil, err
	}
	return &Identity{ID: account.ID, Email: account.Email, Role: account.Role, IsActive: account.IsActive}, nil
}

// AccountStatus adapts Identity for utils.RequireActive.
func (s *AuthService) AccountStatus(ctx context.Context, accountID uuid.UUID) (string, bool, error) {
	id, err := s.Identity(ctx, accountID)
	if err != nil {
		return "", false, err
	}
	return id.Role, id.IsActive, nil
}

func (s *AuthService) SetRole(ctx context.Context, accountID uuid.UUID, role string) (*Identity, error) {
	switch role {
	case models.RoleAdmin, models.RoleStaff, models.RoleCustomer:
	default:
		return nil, errs.Validation("Invalid role: %s", role)
	}
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", accountID).Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound("Account")
	}
	s.logger.Info("account role changed", zap.String("account_id", accountID.String()), zap.String("role", role))
	return s.Identity(ctx, accountID)
}

// EnsureAdmin creates the bootstrap administrator when no admin exists yet.
// It is a no-op when email is empty.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Account{}).Where("role = ?", models.RoleAdmin).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if len(password) < minPasswordLength {
		return errs.Validation("Admin password must be at least %d characters", minPasswordLength)
	}

	var existing models.Account
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Model(&existing).Updates(map[string]any{"role": models.RoleAdmin, "is_active": true}).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin := &models.Account{Email: email, Password: password, Role: models.RoleAdmin, IsActive: true}
		if err := db.Create(admin).Error; err != nil {
			return err
		}
	default:
		return err
	}
	s.logger.Info("bootstrap admin ensured", zap.String("email", email))
	return nil
}
