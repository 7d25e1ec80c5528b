package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// PaymentService is the seam to the external payment gateway. A deposit is
// journaled pending with a fresh reference; the gateway's webhook later
// confirms or fails it by that reference, at most once.
type PaymentService struct {
	db     *gorm.DB
	ledger *LedgerService
}

func NewPaymentService(db *gorm.DB, ledger *LedgerService) *PaymentService {
	return &PaymentService{db: db, ledger: ledger}
}

// InitiateDeposit journals a pending deposit and returns it. No balance
// change happens until the gateway confirms.
func (s *PaymentService) InitiateDeposit(userID uint, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	entry := &models.Transaction{
		UserID:    userID,
		Amount:    amount,
		Direction: models.DirectionCredit,
		Type:      models.TxDeposit,
		Status:    models.StatusPending,
		Reference: uuid.NewString(),
		Remark:    "deposit via payment gateway",
	}
	if err := s.ledger.Record(s.db, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ConfirmDeposit processes a gateway callback. The status transition is
// conditional on the entry still being pending, so a replayed callback is
// rejected instead of crediting twice. Only deposit entries are accepted;
// pending withdrawals are resolved exclusively through the admin workflow.
func (s *PaymentService) ConfirmDeposit(reference string, success bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.ledger.FindByReference(tx, reference)
		if err != nil {
			return err
		}
		if entry.Type != models.TxDeposit {
			return fmt.Errorf("transaction %s is not a deposit", reference)
		}

		newStatus := models.StatusSuccess
		if !success {
			newStatus = models.StatusFailed
		}
		if err := s.ledger.UpdateStatus(tx, reference, newStatus); err != nil {
			return err
		}
		if success {
			if _, err := s.ledger.Credit(tx, entry.UserID, entry.Amount); err != nil {
				return err
			}
		}

		logrus.WithFields(logrus.Fields{
			"reference": reference,
			"user_id":   entry.UserID,
			"amount":    entry.Amount.String(),
			"success":   success,
		}).Info("Deposit confirmed")
		return nil
	})
}

// GetTransactions returns a page of a user's journal, newest first.
func (s *PaymentService) GetTransactions(userID uint, page, pageSize int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Transaction
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
