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
	"gorm.io/gorm"
)

const (
	LinkOTPLength      = 6
	LinkOTPTTL         = 5 * time.Minute
	LinkOTPMaxAttempts = 5
)

type LinkInitiateResult struct {
	Message          string `json:"message"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

// LinkingService attaches an online account to a walk-in profile once the
// caller proves control of the phone number with a one-time code.
type LinkingService struct {
	db     *gorm.DB
	otp    *OTPService
	sms    SMSSender
	logger *zap.Logger
}

func NewLinkingService(db *gorm.DB, otp *OTPService, sms SMSSender, log *zap.Logger) *LinkingService {
	return &LinkingService{db: db, otp: otp, sms: sms, logger: logger.OrNop(log)}
}

// Initiate sends a code to the phone of an unlinked walk-in profile. The
// reply does not depend on whether the SMS gateway accepted the message.
func (s *LinkingService) Initiate(ctx context.Context, rawPhone string) (*LinkInitiateResult, error) {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	if _, err := findWalkIn(s.db.WithContext(ctx), phone); err != nil {
		return nil, err
	}

	code, err := s.otp.Generate(LinkOTPLength)
	if err != nil {
		return nil, err
	}
	if err := s.otp.Store(ctx, phone, code, LinkOTPTTL); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(LinkOTPTTL.Minutes()))
	if err := s.sms.Send(ctx, phone, body); err != nil {
		s.logger.Warn("failed to deliver linking code", zap.String("phone", maskPhone(phone)), zap.Error(err))
	}

	return &LinkInitiateResult{
		Message:          "A verification code has been sent to your phone number",
		ExpiresInSeconds: int(LinkOTPTTL.Seconds()),
	}, nil
}

// VerifyAndMerge checks the code and, in one transaction, hands the walk-in
// profile to accountID and soft-deletes the account's stub profile. The code
// is only cleared after the merge committed, so a failed merge can be
// retried with the same code.
func (s *LinkingService) VerifyAndMerge(ctx context.Context, accountID uuid.UUID, rawPhone, code string) (*models.Customer, error) {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	ok, err := s.otp.Verify(ctx, phone, code, LinkOTPMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return nil, errs.ErrInvalidOTP
	}

	var linked models.Customer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stub models.Customer
		err := tx.Where("account_id = ?", accountID).First(&stub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Linking("No customer profile found for this account", nil)
		}
		if err != nil {
			return err
		}
		if stub.Kind() != models.ProfileStub {
			return errs.Linking("Account is already linked to a customer profile", nil)
		}

		walkIn, err := findWalkIn(tx, phone)
		if err != nil {
			if errs.Is(err, errs.KindNotFound) {
				return errs.Linking("No walk-in profile found for this phone number", nil)
			}
			return err
		}

		if err := tx.Delete(&stub).Error; err != nil {
			return err
		}
		if err := tx.Model(walkIn).Update("account_id", accountID).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", walkIn.ID).First(&linked).Error
	})
	if err != nil {
		if errs.Is(err, errs.KindAccountLinking) {
			return nil, err
		}
		return nil, errs.Linking("Failed to link account", err)
	}

	if err := s.otp.Clear(ctx, phone); err != nil {
		s.logger.Warn("failed to clear linking code", zap.String("phone", maskPhone(phone)), zap.Error(err))
	}
	s.logger.Info("account linked to walk-in profile",
		zap.String("account_id", accountID.String()),
		zap.String("customer_id", linked.ID.String()),
	)
	return &linked, nil
}

func findWalkIn(db *gorm.DB, phone string) (*models.Customer, error) {
	var c models.Customer
	err := db.Where("phone_number = ? AND account_id IS NULL", phone).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("Walk-in customer")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func maskPhone(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return "******" + phone[len(phone)-4:]
}
