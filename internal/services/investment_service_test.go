package services

import (
	"errors"
	"testing"

	"investment-platform/internal/models"
)

func TestPurchaseSnapshotsPlan(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	upline := NewUplineService(db)
	commission := NewCommissionService(db, ledger, upline, dec("200"), dec("100"))
	investments := NewInvestmentService(db, ledger, commission)

	user := createTestUser(t, db, "INV01", dec("10000"), nil)
	plan := createTestPlan(t, db, "Starter", dec("8000"), dec("400"), 30)

	inv, err := investments.Purchase(user.ID, plan.ID)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	if !inv.Amount.Equal(dec("8000")) || !inv.DailyEarning.Equal(dec("400")) || inv.DurationDays != 30 {
		t.Errorf("snapshot mismatch: amount=%s daily=%s days=%d", inv.Amount, inv.DailyEarning, inv.DurationDays)
	}
	if inv.Status != models.InvestmentActive {
		t.Errorf("expected active investment, got %s", inv.Status)
	}
	if got := userBalance(t, db, user.ID); !got.Equal(dec("2000")) {
		t.Errorf("expected balance 2000 after purchase, got %s", got)
	}
	if n := countTransactions(t, db, user.ID, models.TxInvestmentPurchase); n != 1 {
		t.Errorf("expected 1 investment_purchase entry, got %d", n)
	}

	// Editing the plan afterwards must not alter the investment.
	if err := db.Model(plan).Update("daily_earning", dec("999")).Error; err != nil {
		t.Fatalf("failed to update plan: %v", err)
	}
	var stored models.Investment
	if err := db.First(&stored, inv.ID).Error; err != nil {
		t.Fatalf("failed to reload investment: %v", err)
	}
	if !stored.DailyEarning.Equal(dec("400")) {
		t.Errorf("plan change leaked into investment: %s", stored.DailyEarning)
	}
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	upline := NewUplineService(db)
	commission := NewCommissionService(db, ledger, upline, dec("200"), dec("100"))
	investments := NewInvestmentService(db, ledger, commission)

	user := createTestUser(t, db, "INV02", dec("100"), nil)
	plan := createTestPlan(t, db, "Gold", dec("8000"), dec("400"), 30)

	if _, err := investments.Purchase(user.ID, plan.ID); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The failed purchase leaves nothing behind.
	if got := userBalance(t, db, user.ID); !got.Equal(dec("100")) {
		t.Errorf("balance must be untouched, got %s", got)
	}
	var count int64
	db.Model(&models.Investment{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no investment rows, got %d", count)
	}
	if n := countTransactions(t, db, user.ID, ""); n != 0 {
		t.Errorf("expected no journal entries, got %d", n)
	}
}

func TestPurchaseInactivePlan(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	upline := NewUplineService(db)
	commission := NewCommissionService(db, ledger, upline, dec("200"), dec("100"))
	investments := NewInvestmentService(db, ledger, commission)

	user := createTestUser(t, db, "INV03", dec("10000"), nil)
	plan := createTestPlan(t, db, "Retired", dec("100"), dec("5"), 10)
	db.Model(plan).Update("is_active", false)

	if _, err := investments.Purchase(user.ID, plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestPurchasePaysUplineCommission(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	upline := NewUplineService(db)
	commission := NewCommissionService(db, ledger, upline, dec("200"), dec("100"))
	investments := NewInvestmentService(db, ledger, commission)

	a := createTestUser(t, db, "INV_A", dec("0"), nil)
	b := createTestUser(t, db, "INV_B", dec("40000"), &a.ID)
	plan := createTestPlan(t, db, "Platinum", dec("40000"), dec("2000"), 60)

	if _, err := investments.Purchase(b.ID, plan.ID); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	// A earns 5% of 40000; B pays only the plan price.
	if got := userBalance(t, db, a.ID); !got.Equal(dec("2000")) {
		t.Errorf("sponsor: expected 2000, got %s", got)
	}
	if got := userBalance(t, db, b.ID); !got.IsZero() {
		t.Errorf("buyer: expected 0, got %s", got)
	}
	if n := countTransactions(t, db, a.ID, models.TxReferralBonus); n != 1 {
		t.Errorf("expected 1 referral_bonus entry for sponsor, got %d", n)
	}
}
