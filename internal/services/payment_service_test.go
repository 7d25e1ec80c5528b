package services

import (
	"errors"
	"testing"

	"investment-platform/internal/models"
)

func TestDepositConfirmation(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	user := createTestUser(t, db, "PAY01", dec("0"), nil)

	entry, err := payments.InitiateDeposit(user.ID, dec("1000"))
	if err != nil {
		t.Fatalf("InitiateDeposit failed: %v", err)
	}
	if entry.Status != models.StatusPending {
		t.Errorf("expected pending deposit, got %s", entry.Status)
	}
	// No credit until the gateway confirms.
	if got := userBalance(t, db, user.ID); !got.IsZero() {
		t.Errorf("expected 0 before confirmation, got %s", got)
	}

	if err := payments.ConfirmDeposit(entry.Reference, true); err != nil {
		t.Fatalf("ConfirmDeposit failed: %v", err)
	}
	if got := userBalance(t, db, user.ID); !got.Equal(dec("1000")) {
		t.Errorf("expected 1000 after confirmation, got %s", got)
	}

	// A replayed callback is rejected and credits nothing.
	if err := payments.ConfirmDeposit(entry.Reference, true); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending on replay, got %v", err)
	}
	if got := userBalance(t, db, user.ID); !got.Equal(dec("1000")) {
		t.Errorf("replay must not credit twice, got %s", got)
	}

	report, err := ledger.Reconcile(user.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !report.Balanced {
		t.Errorf("ledger out of balance after deposit")
	}
}

func TestDepositFailure(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	user := createTestUser(t, db, "PAY02", dec("0"), nil)

	entry, err := payments.InitiateDeposit(user.ID, dec("1000"))
	if err != nil {
		t.Fatalf("InitiateDeposit failed: %v", err)
	}

	if err := payments.ConfirmDeposit(entry.Reference, false); err != nil {
		t.Fatalf("ConfirmDeposit failed: %v", err)
	}
	if got := userBalance(t, db, user.ID); !got.IsZero() {
		t.Errorf("failed deposit must not credit, got %s", got)
	}

	stored, err := ledger.FindByReference(db, entry.Reference)
	if err != nil {
		t.Fatalf("FindByReference failed: %v", err)
	}
	if stored.Status != models.StatusFailed {
		t.Errorf("expected failed status, got %s", stored.Status)
	}
}

func TestConfirmDepositRejectsWithdrawalReference(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)
	withdrawals := NewWithdrawalService(db, ledger)

	user := createTestUser(t, db, "PAY04", dec("0"), nil)
	if _, err := ledger.Credit(db, user.ID, dec("5000")); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if err := ledger.Record(db, &models.Transaction{
		UserID: user.ID, Amount: dec("5000"), Direction: models.DirectionCredit,
		Type: models.TxDeposit, Status: models.StatusSuccess, Reference: "pay04-deposit",
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	setTestPin(t, db, user.ID, "1234")

	entry, err := withdrawals.RequestWithdrawal(user.ID, dec("3000"), "1234", testBank())
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}

	// A gateway callback must not be able to resolve a withdrawal: neither
	// outcome may move money or change its status.
	if err := payments.ConfirmDeposit(entry.Reference, true); err == nil {
		t.Fatal("expected error confirming a withdrawal reference")
	}
	if got := userBalance(t, db, user.ID); !got.Equal(dec("2000")) {
		t.Errorf("reserved funds must stay reserved, got %s", got)
	}
	if err := payments.ConfirmDeposit(entry.Reference, false); err == nil {
		t.Fatal("expected error failing a withdrawal reference")
	}

	stored, err := ledger.FindByReference(db, entry.Reference)
	if err != nil {
		t.Fatalf("FindByReference failed: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("withdrawal must stay pending, got %s", stored.Status)
	}

	// The admin workflow still owns the resolution.
	if err := withdrawals.Resolve(entry.Reference, true); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	report, err := ledger.Reconcile(user.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !report.Balanced {
		t.Error("ledger out of balance after resolution")
	}
}

func TestConfirmUnknownReference(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	if err := payments.ConfirmDeposit("no-such-ref", true); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestGetTransactionsPagination(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	user := createTestUser(t, db, "PAY03", dec("0"), nil)
	for i := 0; i < 5; i++ {
		if _, err := payments.InitiateDeposit(user.ID, dec("10")); err != nil {
			t.Fatalf("InitiateDeposit failed: %v", err)
		}
	}

	entries, total, err := payments.GetTransactions(user.ID, 1, 3)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if total != 5 || len(entries) != 3 {
		t.Errorf("expected total 5 page of 3, got total=%d len=%d", total, len(entries))
	}

	entries, _, err = payments.GetTransactions(user.ID, 2, 3)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries on page 2, got %d", len(entries))
	}
}
