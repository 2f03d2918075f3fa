package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.Booking{},
		&models.BookingItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewWalletService(repository.NewWalletRepository(db), "USD"), db
}

func walletBooking(t *testing.T, db *gorm.DB, userID uint, total, currency string) *models.Booking {
	t.Helper()
	now := time.Now()
	booking := &models.Booking{
		BookingNo:      fmt.Sprintf("TM%d", now.UnixNano()),
		UserID:         userID,
		Status:         constants.BookingStatusPendingPayment,
		Currency:       currency,
		OriginalAmount: money(t, total),
		DiscountAmount: money(t, "0.00"),
		TotalAmount:    money(t, total),
		ExpiresAt:      now.Add(30 * time.Minute),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	return booking
}

func TestWalletGetAccountAutoCreates(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	account, err := svc.GetAccount(9)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Currency != "USD" || !account.Balance.Decimal.IsZero() {
		t.Fatalf("fresh account should be zero USD, got %+v", account)
	}

	var count int64
	if err := db.Model(&models.WalletAccount{}).Where("user_id = ?", 9).Count(&count).Error; err != nil {
		t.Fatalf("count accounts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one account row, got %d", count)
	}
}

func TestWalletDebitBookingIdempotentByReference(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	booking := walletBooking(t, db, 9, "60.00", "USD")
	if _, _, err := svc.AdminAdjustBalance(WalletAdjustInput{UserID: 9, Delta: money(t, "100.00")}); err != nil {
		t.Fatalf("fund wallet failed: %v", err)
	}

	var first, second *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		first, err = svc.DebitBookingInTx(tx, booking)
		if err != nil {
			return err
		}
		second, err = svc.DebitBookingInTx(tx, booking)
		return err
	})
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("repeated debit must return the same transaction, got %d vs %d", first.ID, second.ID)
	}

	var account models.WalletAccount
	if err := db.Where("user_id = ?", 9).First(&account).Error; err != nil {
		t.Fatalf("reload account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("balance want 40.00 got %s", account.Balance.String())
	}
}

func TestWalletDebitInsufficientBalance(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	booking := walletBooking(t, db, 9, "60.00", "USD")
	if _, _, err := svc.AdminAdjustBalance(WalletAdjustInput{UserID: 9, Delta: money(t, "10.00")}); err != nil {
		t.Fatalf("fund wallet failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitBookingInTx(tx, booking)
		return err
	})
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("want ErrWalletInsufficientBalance got %v", err)
	}

	var account models.WalletAccount
	if err := db.Where("user_id = ?", 9).First(&account).Error; err != nil {
		t.Fatalf("reload account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("failed debit must not change balance, got %s", account.Balance.String())
	}
}

func TestWalletDebitCurrencyMismatch(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	booking := walletBooking(t, db, 9, "60.00", "EUR")
	if _, _, err := svc.AdminAdjustBalance(WalletAdjustInput{UserID: 9, Delta: money(t, "100.00")}); err != nil {
		t.Fatalf("fund wallet failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitBookingInTx(tx, booking)
		return err
	})
	if !errors.Is(err, ErrWalletCurrencyMismatch) {
		t.Fatalf("want ErrWalletCurrencyMismatch got %v", err)
	}
}

func TestWalletRefundBookingIdempotentByReference(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	booking := walletBooking(t, db, 9, "60.00", "USD")

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.RefundBookingInTx(tx, booking, constants.WalletTxnTypeBookingRefund, ""); err != nil {
			return err
		}
		_, err := svc.RefundBookingInTx(tx, booking, constants.WalletTxnTypeBookingRefund, "")
		return err
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	var account models.WalletAccount
	if err := db.Where("user_id = ?", 9).First(&account).Error; err != nil {
		t.Fatalf("reload account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("repeated refund must credit once, balance = %s", account.Balance.String())
	}

	var txnCount int64
	if err := db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ?", 9, constants.WalletTxnTypeBookingRefund).
		Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if txnCount != 1 {
		t.Fatalf("expected a single refund transaction, got %d", txnCount)
	}
}

func TestWalletAdminAdjustNegativeDelta(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	if _, _, err := svc.AdminAdjustBalance(WalletAdjustInput{UserID: 9, Delta: money(t, "50.00")}); err != nil {
		t.Fatalf("fund wallet failed: %v", err)
	}

	account, txn, err := svc.AdminAdjustBalance(WalletAdjustInput{
		UserID: 9,
		Delta:  models.NewMoneyFromDecimal(decimal.RequireFromString("-20.00")),
		Remark: "chargeback",
	})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("balance want 30.00 got %s", account.Balance.String())
	}
	if txn.Direction != constants.WalletTxnDirectionOut || txn.Amount.String() != "20.00" {
		t.Fatalf("negative delta should record an outgoing 20.00, got %+v", txn)
	}

	// 扣到负数拒绝
	if _, _, err := svc.AdminAdjustBalance(WalletAdjustInput{
		UserID: 9,
		Delta:  models.NewMoneyFromDecimal(decimal.RequireFromString("-100.00")),
	}); !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("want ErrWalletInsufficientBalance got %v", err)
	}

	var balances []models.WalletTransaction
	if err := db.Where("user_id = ?", 9).Order("id").Find(&balances).Error; err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("rejected adjustment must not record a transaction, got %d", len(balances))
	}
}
