package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// BankDetails is the destination account for a withdrawal.
type BankDetails struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
}

// WithdrawalService gates withdrawal requests behind the PIN credential and
// runs the admin approval state machine. Requests debit the balance
// immediately so the same funds cannot back two pending withdrawals; approval
// only flips status, rejection refunds the reserved amount.
type WithdrawalService struct {
	db     *gorm.DB
	ledger *LedgerService
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService) *WithdrawalService {
	return &WithdrawalService{db: db, ledger: ledger}
}

// SetPin stores the bcrypt hash of the user's withdrawal PIN.
func (s *WithdrawalService) SetPin(userID uint, pin string) error {
	if len(pin) < 4 {
		return fmt.Errorf("pin must be at least 4 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("pin_hash", string(hash))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RequestWithdrawal verifies the PIN, reserves the funds and journals a
// pending withdrawal. A PIN mismatch fails the whole request before any
// balance mutation and leaves no journal row behind.
func (s *WithdrawalService) RequestWithdrawal(userID uint, amount decimal.Decimal, pin string, bank BankDetails) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.PinHash == nil {
		return nil, ErrPinNotSet
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PinHash), []byte(pin)) != nil {
		return nil, ErrInvalidPin
	}

	entry := &models.Transaction{
		UserID:        userID,
		Amount:        amount,
		Direction:     models.DirectionDebit,
		Type:          models.TxWithdrawal,
		Status:        models.StatusPending,
		Reference:     uuid.NewString(),
		Remark:        "withdrawal request",
		BankName:      bank.BankName,
		AccountNumber: bank.AccountNumber,
		AccountName:   bank.AccountName,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.Debit(tx, userID, amount); err != nil {
			return err
		}
		return s.ledger.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount.String(),
		"reference": entry.Reference,
	}).Info("Withdrawal requested")
	return entry, nil
}

// Resolve is the only operation allowed to move a pending withdrawal to a
// terminal state. Approval flips status to success (the funds were already
// debited at request time); rejection credits the reserved amount back and
// flips status to failed. Terminal entries cannot be resolved again.
func (s *WithdrawalService) Resolve(reference string, approve bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.ledger.FindByReference(tx, reference)
		if err != nil {
			return err
		}
		if entry.Type != models.TxWithdrawal {
			return fmt.Errorf("transaction %s is not a withdrawal", reference)
		}

		newStatus := models.StatusSuccess
		if !approve {
			newStatus = models.StatusFailed
		}
		if err := s.ledger.UpdateStatus(tx, reference, newStatus); err != nil {
			return err
		}
		if !approve {
			if _, err := s.ledger.Credit(tx, entry.UserID, entry.Amount); err != nil {
				return err
			}
		}

		logrus.WithFields(logrus.Fields{
			"reference": reference,
			"user_id":   entry.UserID,
			"amount":    entry.Amount.String(),
			"approved":  approve,
		}).Info("Withdrawal resolved")
		return nil
	})
}

// PendingWithdrawals lists unresolved requests for the admin surface.
func (s *WithdrawalService) PendingWithdrawals() ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := s.db.Where("type = ? AND status = ?", models.TxWithdrawal, models.StatusPending).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
