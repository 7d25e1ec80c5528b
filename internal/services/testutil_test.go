package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"investment-platform/internal/models"
)

// setupTestDB opens the shared in-memory database and wipes it. :memory: is
// unique per connection unless cache=shared, and gorm pools connections, so
// the shared cache keeps every handle on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Investment{},
		&models.Transaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	db.Exec("DELETE FROM transactions")
	db.Exec("DELETE FROM investments")
	db.Exec("DELETE FROM plans")
	db.Exec("DELETE FROM users")

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, code string, balance decimal.Decimal, referrerID *uint) *models.User {
	t.Helper()

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", code),
		PasswordHash: "x",
		Balance:      balance,
		ReferralCode: code,
		ReferrerID:   referrerID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", code, err)
	}
	return user
}

func createTestPlan(t *testing.T, db *gorm.DB, name string, price, daily decimal.Decimal, days int) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		Name:         name,
		Price:        price,
		DailyEarning: daily,
		DurationDays: days,
		IsActive:     true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create plan %s: %v", name, err)
	}
	return plan
}

func setTestPin(t *testing.T, db *gorm.DB, userID uint, pin string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}
	h := string(hash)
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("pin_hash", &h).Error; err != nil {
		t.Fatalf("failed to set pin: %v", err)
	}
}

func userBalance(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("failed to load user %d: %v", userID, err)
	}
	return user.Balance
}

func countTransactions(t *testing.T, db *gorm.DB, userID uint, txType string) int64 {
	t.Helper()

	var count int64
	q := db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("failed to count transactions: %v", err)
	}
	return count
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
