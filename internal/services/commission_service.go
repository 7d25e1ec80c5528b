package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// CommissionRates is the payout percentage per upline level, nearest sponsor
// first.
var CommissionRates = []decimal.Decimal{
	decimal.NewFromFloat(0.05),
	decimal.NewFromFloat(0.03),
	decimal.NewFromFloat(0.02),
}

// CommissionService pays tiered referral bonuses up the sponsor chain.
// Each level is an independent unit of work: one level failing is logged and
// skipped without rolling back the others.
type CommissionService struct {
	db            *gorm.DB
	ledger        *LedgerService
	upline        *UplineService
	welcomeBonus  decimal.Decimal
	referrerBonus decimal.Decimal
}

func NewCommissionService(db *gorm.DB, ledger *LedgerService, upline *UplineService, welcomeBonus, referrerBonus decimal.Decimal) *CommissionService {
	return &CommissionService{
		db:            db,
		ledger:        ledger,
		upline:        upline,
		welcomeBonus:  welcomeBonus,
		referrerBonus: referrerBonus,
	}
}

// Distribute pays referral commission on a qualifying investment. Returns the
// number of levels paid and failed.
func (s *CommissionService) Distribute(investorID uint, principal decimal.Decimal) (paid, failed int) {
	chain, err := s.upline.ResolveChain(investorID, MaxUplineDepth)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"investor_id": investorID,
			"error":       err.Error(),
		}).Error("Commission distribution: upline resolution failed")
		return 0, 0
	}

	for level, sponsorID := range chain {
		if level >= len(CommissionRates) {
			break
		}
		amount := principal.Mul(CommissionRates[level]).Round(2)
		if !amount.IsPositive() {
			continue
		}

		remark := fmt.Sprintf("level %d referral bonus from user %d", level+1, investorID)
		if err := s.payBonus(sponsorID, amount, remark); err != nil {
			failed++
			logrus.WithFields(logrus.Fields{
				"investor_id": investorID,
				"sponsor_id":  sponsorID,
				"level":       level + 1,
				"amount":      amount.String(),
				"error":       err.Error(),
			}).Warn("Referral payout failed, skipping level")
			continue
		}
		paid++
	}

	if paid > 0 || failed > 0 {
		logrus.WithFields(logrus.Fields{
			"investor_id": investorID,
			"principal":   principal.String(),
			"paid":        paid,
			"failed":      failed,
		}).Info("Referral commission distributed")
	}
	return paid, failed
}

// PayWelcomeBonus credits the verifying user with the fixed welcome bonus in
// the caller's unit of work, so a failed credit rolls back together with the
// verification flip that triggered it.
func (s *CommissionService) PayWelcomeBonus(tx *gorm.DB, userID uint) error {
	remark := "welcome bonus on account verification"
	if err := s.creditAndRecord(tx, userID, s.welcomeBonus, models.TxWelcomeBonus, remark); err != nil {
		return fmt.Errorf("welcome bonus for user %d: %w", userID, err)
	}
	return nil
}

// PayReferrerBonus pays the level-1 sponsor's bonus for a verified referee.
// Best-effort: any failure is logged and never propagates to the verification
// that triggered it.
func (s *CommissionService) PayReferrerBonus(userID uint) {
	chain, err := s.upline.ResolveChain(userID, 1)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Verification referrer bonus: upline resolution failed, skipping")
		return
	}
	if len(chain) == 0 {
		return
	}

	remark := fmt.Sprintf("referral bonus for verified user %d", userID)
	if err := s.payBonus(chain[0], s.referrerBonus, remark); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"sponsor_id": chain[0],
			"error":      err.Error(),
		}).Warn("Verification referrer bonus failed, skipping")
	}
}

// payBonus credits one sponsor in its own transaction.
func (s *CommissionService) payBonus(sponsorID uint, amount decimal.Decimal, remark string) error {
	if !amount.IsPositive() {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.creditAndRecord(tx, sponsorID, amount, models.TxReferralBonus, remark)
	})
}

// creditAndRecord performs one balance credit plus its journal entry in the
// supplied unit of work.
func (s *CommissionService) creditAndRecord(tx *gorm.DB, userID uint, amount decimal.Decimal, txType, remark string) error {
	if _, err := s.ledger.Credit(tx, userID, amount); err != nil {
		return err
	}
	return s.ledger.Record(tx, &models.Transaction{
		UserID:    userID,
		Amount:    amount,
		Direction: models.DirectionCredit,
		Type:      txType,
		Status:    models.StatusSuccess,
		Reference: uuid.NewString(),
		Remark:    remark,
	})
}
