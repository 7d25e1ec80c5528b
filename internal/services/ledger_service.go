package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// LedgerService is the single writer of User.Balance and of journal rows.
// Credit, Debit, Record and UpdateStatus take the unit-of-work handle
// explicitly so callers can commit a balance change and its journal entry
// together; a crash between the two never leaves them inconsistent.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// DB returns the root handle for callers opening their own unit of work.
func (s *LedgerService) DB() *gorm.DB {
	return s.db
}

// Credit adds amount to the user's balance and returns the new balance.
// Exactly one row update; the caller is responsible for journaling it in the
// same unit of work.
func (s *LedgerService) Credit(tx *gorm.DB, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("credit user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, ErrUserNotFound
	}

	return s.currentBalance(tx, userID)
}

// Debit subtracts amount from the user's balance and returns the new balance.
// The update is conditional on balance >= amount so a concurrent debit cannot
// interleave into a lost update or a negative balance; when the condition
// fails the balance is untouched and ErrInsufficientFunds is returned.
func (s *LedgerService) Debit(tx *gorm.DB, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("debit user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing user from a short balance.
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return decimal.Zero, err
		}
		if count == 0 {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, ErrInsufficientFunds
	}

	return s.currentBalance(tx, userID)
}

func (s *LedgerService) currentBalance(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	var user models.User
	if err := tx.Select("balance").Where("id = ?", userID).First(&user).Error; err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

// Record appends one immutable journal row. A reference that already exists
// is rejected with ErrDuplicateReference and the first row stays untouched;
// that is the idempotency guarantee against replayed payment callbacks.
func (s *LedgerService) Record(tx *gorm.DB, entry *models.Transaction) error {
	if !entry.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	var count int64
	if err := tx.Model(&models.Transaction{}).
		Where("reference = ?", entry.Reference).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateReference
	}

	if err := tx.Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("record transaction %s: %w", entry.Reference, err)
	}
	return nil
}

// UpdateStatus transitions a pending journal entry to a terminal status. It is
// the only mutation permitted on an existing row; amount, type and user are
// immutable post-creation.
func (s *LedgerService) UpdateStatus(tx *gorm.DB, reference, newStatus string) error {
	if newStatus != models.StatusSuccess && newStatus != models.StatusFailed {
		return fmt.Errorf("invalid terminal status %q", newStatus)
	}

	res := tx.Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, models.StatusPending).
		Update("status", newStatus)
	if res.Error != nil {
		return fmt.Errorf("update status of %s: %w", reference, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Transaction{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTransactionNotFound
		}
		return ErrNotPending
	}
	return nil
}

// FindByReference loads a journal entry by its idempotency key.
func (s *LedgerService) FindByReference(tx *gorm.DB, reference string) (*models.Transaction, error) {
	var entry models.Transaction
	if err := tx.Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ReconciliationReport compares a user's balance against the signed sum of
// their successful journal entries. Pending withdrawals have already reserved
// funds out of the balance, so they are reported separately and count toward
// the expected balance.
type ReconciliationReport struct {
	UserID     uint            `json:"user_id"`
	Balance    decimal.Decimal `json:"balance"`
	JournalSum decimal.Decimal `json:"journal_sum"`
	Reserved   decimal.Decimal `json:"reserved"`
	Balanced   bool            `json:"balanced"`
}

// Reconcile recomputes the journal sum for a user. For every user, at any
// time, balance must equal the sum of success-status entries signed by
// direction, minus funds reserved by pending withdrawals.
func (s *LedgerService) Reconcile(userID uint) (*ReconciliationReport, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var entries []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		return nil, err
	}

	sum := decimal.Zero
	reserved := decimal.Zero
	for i := range entries {
		e := &entries[i]
		switch {
		case e.Status == models.StatusSuccess:
			sum = sum.Add(e.SignedAmount())
		case e.Status == models.StatusPending && e.Type == models.TxWithdrawal:
			reserved = reserved.Add(e.Amount)
		}
	}

	return &ReconciliationReport{
		UserID:     userID,
		Balance:    user.Balance,
		JournalSum: sum,
		Reserved:   reserved,
		Balanced:   user.Balance.Equal(sum.Sub(reserved)),
	}, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
