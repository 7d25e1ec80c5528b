package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"investment-platform/internal/models"
	"investment-platform/internal/utils"
)

// UserService owns registration, verification and the user-directory lookups
// the ledger core depends on.
type UserService struct {
	db         *gorm.DB
	commission *CommissionService
}

func NewUserService(db *gorm.DB, commission *CommissionService) *UserService {
	return &UserService{db: db, commission: commission}
}

// Register creates an account. The sponsor link is bound exactly once here,
// from the supplied referral code, and is immutable afterwards.
func (s *UserService) Register(email, password, referralCode string) (*models.User, error) {
	var referrerID *uint
	if referralCode != "" {
		sponsor, err := s.FindByReferralCode(referralCode)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		referrerID = &sponsor.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		ReferrerID:   referrerID,
	}

	// Retry on the off chance the generated code collides.
	for attempt := 0; attempt < 3; attempt++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return nil, err
		}
		user.ReferralCode = code
		if err := s.db.Create(user).Error; err != nil {
			if isDuplicateKey(err) && attempt < 2 {
				continue
			}
			return nil, fmt.Errorf("create user: %w", err)
		}
		break
	}

	logrus.WithFields(logrus.Fields{
		"user_id":       user.ID,
		"referral_code": user.ReferralCode,
		"has_sponsor":   referrerID != nil,
	}).Info("User registered")
	return user, nil
}

// Authenticate checks email/password and returns the user.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &user, nil
}

// Verify marks the account verified and pays the welcome bonus. The flip and
// the bonus credit commit in one transaction, so a failed credit leaves the
// account unverified and the operation retryable; the conditional update makes
// the bonus fire at most once even if two verification callbacks race. The
// referrer bonus is paid best-effort after commit.
func (s *UserService) Verify(userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND is_verified = ?", userID, false).
			Update("is_verified", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return ErrAlreadyVerified
		}
		return s.commission.PayWelcomeBonus(tx, userID)
	})
	if err != nil {
		return err
	}

	s.commission.PayReferrerBonus(userID)
	return nil
}

// FindByID is the user-directory lookup used across the core.
func (s *UserService) FindByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByReferralCode resolves a sponsor from their invite code.
func (s *UserService) FindByReferralCode(code string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetReferrals lists the users directly sponsored by userID.
func (s *UserService) GetReferrals(userID uint) ([]models.User, error) {
	var referrals []models.User
	if err := s.db.Where("referrer_id = ?", userID).Order("created_at DESC").Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}
