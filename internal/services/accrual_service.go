package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// AccrualResult aggregates the outcome of one accrual run.
type AccrualResult struct {
	Credited  int
	Completed int
	Skipped   int
	Failed    int
}

// AccrualService credits every active investment with its daily earning.
// Investments belong to different users' balance rows, so the batch fans out
// over a bounded worker pool; each investment is its own transaction and a
// failure on one never aborts the rest of the run.
type AccrualService struct {
	db      *gorm.DB
	ledger  *LedgerService
	workers int
}

func NewAccrualService(db *gorm.DB, ledger *LedgerService, workers int) *AccrualService {
	if workers <= 0 {
		workers = 8
	}
	return &AccrualService{db: db, ledger: ledger, workers: workers}
}

// RunDailyAccrual processes every active investment once. An investment whose
// duration has elapsed is marked completed without crediting; one already
// accrued today (UTC) is skipped, so re-running within the same calendar day
// cannot double-pay.
func (s *AccrualService) RunDailyAccrual(now time.Time) (*AccrualResult, error) {
	var investments []models.Investment
	if err := s.db.Where("status = ?", models.InvestmentActive).Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("load active investments: %w", err)
	}

	result := &AccrualResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	queue := make(chan models.Investment)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inv := range queue {
				outcome, err := s.accrueOne(inv, now)
				mu.Lock()
				switch {
				case err != nil:
					result.Failed++
				case outcome == accrualCompleted:
					result.Completed++
				case outcome == accrualSkipped:
					result.Skipped++
				default:
					result.Credited++
				}
				mu.Unlock()
				if err != nil {
					logrus.WithFields(logrus.Fields{
						"investment_id": inv.ID,
						"user_id":       inv.UserID,
						"error":         err.Error(),
					}).Warn("Accrual failed for investment, skipping")
				}
			}
		}()
	}

	for _, inv := range investments {
		queue <- inv
	}
	close(queue)
	wg.Wait()

	logrus.WithFields(logrus.Fields{
		"credited":  result.Credited,
		"completed": result.Completed,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	}).Info("Daily accrual run finished")
	return result, nil
}

type accrualOutcome int

const (
	accrualCredited accrualOutcome = iota
	accrualCompleted
	accrualSkipped
)

func (s *AccrualService) accrueOne(inv models.Investment, now time.Time) (accrualOutcome, error) {
	if !inv.ExpiresAt().After(now) {
		res := s.db.Model(&models.Investment{}).
			Where("id = ? AND status = ?", inv.ID, models.InvestmentActive).
			Update("status", models.InvestmentCompleted)
		if res.Error != nil {
			return accrualCompleted, res.Error
		}
		return accrualCompleted, nil
	}

	if inv.LastAccruedOn != nil && sameDay(*inv.LastAccruedOn, now) {
		return accrualSkipped, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional update keeps the run idempotent even if two triggers
		// race on the same investment.
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ? AND (last_accrued_on IS NULL OR last_accrued_on < ?)",
				inv.ID, models.InvestmentActive, startOfDay(now)).
			Updates(map[string]interface{}{
				"total_earning":   gorm.Expr("total_earning + ?", inv.DailyEarning),
				"last_accrued_on": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyAccrued
		}
		if _, err := s.ledger.Credit(tx, inv.UserID, inv.DailyEarning); err != nil {
			return err
		}
		return s.ledger.Record(tx, &models.Transaction{
			UserID:    inv.UserID,
			Amount:    inv.DailyEarning,
			Direction: models.DirectionCredit,
			Type:      models.TxEarning,
			Status:    models.StatusSuccess,
			Reference: uuid.NewString(),
			Remark:    fmt.Sprintf("daily earning for investment %d", inv.ID),
		})
	})
	if err == errAlreadyAccrued {
		return accrualSkipped, nil
	}
	if err != nil {
		return accrualCredited, err
	}
	return accrualCredited, nil
}

var errAlreadyAccrued = fmt.Errorf("investment already accrued this period")

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
