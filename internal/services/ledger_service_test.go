package services

import (
	"errors"
	"testing"

	"investment-platform/internal/models"
)

func TestCreditAndDebit(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "LEDGER01", dec("0"), nil)

	balance, err := ledger.Credit(db, user.ID, dec("100"))
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if !balance.Equal(dec("100")) {
		t.Errorf("expected balance 100, got %s", balance)
	}

	balance, err = ledger.Debit(db, user.ID, dec("40"))
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if !balance.Equal(dec("60")) {
		t.Errorf("expected balance 60, got %s", balance)
	}

	if got := userBalance(t, db, user.ID); !got.Equal(dec("60")) {
		t.Errorf("persisted balance: expected 60, got %s", got)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "LEDGER02", dec("50"), nil)

	_, err := ledger.Debit(db, user.ID, dec("100"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := userBalance(t, db, user.ID); !got.Equal(dec("50")) {
		t.Errorf("balance must be untouched after failed debit, got %s", got)
	}
}

func TestDebitUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	if _, err := ledger.Debit(db, 9999, dec("10")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRecordRejectsDuplicateReference(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "LEDGER03", dec("0"), nil)

	first := &models.Transaction{
		UserID:    user.ID,
		Amount:    dec("100"),
		Direction: models.DirectionCredit,
		Type:      models.TxDeposit,
		Status:    models.StatusPending,
		Reference: "ref-dup-1",
	}
	if err := ledger.Record(db, first); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}

	replay := &models.Transaction{
		UserID:    user.ID,
		Amount:    dec("999"),
		Direction: models.DirectionCredit,
		Type:      models.TxDeposit,
		Status:    models.StatusSuccess,
		Reference: "ref-dup-1",
	}
	if err := ledger.Record(db, replay); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}

	// The original entry stays unmodified.
	stored, err := ledger.FindByReference(db, "ref-dup-1")
	if err != nil {
		t.Fatalf("FindByReference failed: %v", err)
	}
	if !stored.Amount.Equal(dec("100")) || stored.Status != models.StatusPending {
		t.Errorf("first entry was modified: amount=%s status=%s", stored.Amount, stored.Status)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "LEDGER04", dec("0"), nil)

	entry := &models.Transaction{
		UserID:    user.ID,
		Amount:    dec("100"),
		Direction: models.DirectionCredit,
		Type:      models.TxDeposit,
		Status:    models.StatusPending,
		Reference: "ref-status-1",
	}
	if err := ledger.Record(db, entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := ledger.UpdateStatus(db, "ref-status-1", models.StatusSuccess); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	// Terminal entries cannot transition again.
	if err := ledger.UpdateStatus(db, "ref-status-1", models.StatusFailed); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}

	if err := ledger.UpdateStatus(db, "no-such-ref", models.StatusSuccess); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}

	if err := ledger.UpdateStatus(db, "ref-status-1", models.StatusPending); err == nil {
		t.Fatal("expected error for non-terminal target status")
	}
}

func TestReconcile(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	user := createTestUser(t, db, "LEDGER05", dec("0"), nil)

	// Credit 100 and debit 30, each with a success journal entry.
	if _, err := ledger.Credit(db, user.ID, dec("100")); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if err := ledger.Record(db, &models.Transaction{
		UserID: user.ID, Amount: dec("100"), Direction: models.DirectionCredit,
		Type: models.TxDeposit, Status: models.StatusSuccess, Reference: "rec-1",
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := ledger.Debit(db, user.ID, dec("30")); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if err := ledger.Record(db, &models.Transaction{
		UserID: user.ID, Amount: dec("30"), Direction: models.DirectionDebit,
		Type: models.TxInvestmentPurchase, Status: models.StatusSuccess, Reference: "rec-2",
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	report, err := ledger.Reconcile(user.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !report.Balanced {
		t.Errorf("expected balanced ledger, got balance=%s journal=%s", report.Balance, report.JournalSum)
	}

	// A pending withdrawal reserves funds; the ledger must still reconcile.
	if _, err := ledger.Debit(db, user.ID, dec("20")); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if err := ledger.Record(db, &models.Transaction{
		UserID: user.ID, Amount: dec("20"), Direction: models.DirectionDebit,
		Type: models.TxWithdrawal, Status: models.StatusPending, Reference: "rec-3",
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	report, err = ledger.Reconcile(user.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !report.Balanced {
		t.Errorf("expected balanced ledger with pending withdrawal, balance=%s journal=%s reserved=%s",
			report.Balance, report.JournalSum, report.Reserved)
	}
	if !report.Reserved.Equal(dec("20")) {
		t.Errorf("expected reserved 20, got %s", report.Reserved)
	}
}
