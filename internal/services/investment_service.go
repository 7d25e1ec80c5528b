package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// InvestmentService handles plan purchases. The purchase debits the buyer,
// inserts the investment row with the plan values snapshotted, and journals
// the debit, all in one transaction; referral commission is distributed
// best-effort after commit.
type InvestmentService struct {
	db         *gorm.DB
	ledger     *LedgerService
	commission *CommissionService
}

func NewInvestmentService(db *gorm.DB, ledger *LedgerService, commission *CommissionService) *InvestmentService {
	return &InvestmentService{db: db, ledger: ledger, commission: commission}
}

// Purchase buys a plan for the user. Plan price changes after purchase never
// alter the investment; DailyEarning and DurationDays are copied at this
// moment.
func (s *InvestmentService) Purchase(userID, planID uint) (*models.Investment, error) {
	var plan models.Plan
	if err := s.db.Where("id = ? AND is_active = ?", planID, true).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	investment := &models.Investment{
		UserID:       userID,
		PlanID:       plan.ID,
		Amount:       plan.Price,
		DailyEarning: plan.DailyEarning,
		DurationDays: plan.DurationDays,
		Status:       models.InvestmentActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.Debit(tx, userID, plan.Price); err != nil {
			return err
		}
		if err := tx.Create(investment).Error; err != nil {
			return fmt.Errorf("create investment: %w", err)
		}
		return s.ledger.Record(tx, &models.Transaction{
			UserID:    userID,
			Amount:    plan.Price,
			Direction: models.DirectionDebit,
			Type:      models.TxInvestmentPurchase,
			Status:    models.StatusSuccess,
			Reference: uuid.NewString(),
			Remark:    fmt.Sprintf("purchase of plan %q", plan.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":       userID,
		"plan_id":       plan.ID,
		"amount":        plan.Price.String(),
		"investment_id": investment.ID,
	}).Info("Investment purchased")

	// Best-effort: commission failures never fail the purchase.
	s.commission.Distribute(userID, plan.Price)

	return investment, nil
}

// GetUserInvestments lists a user's investments, newest first.
func (s *InvestmentService) GetUserInvestments(userID uint) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}

// GetActivePlans lists the plans currently offered for purchase.
func (s *InvestmentService) GetActivePlans() ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
