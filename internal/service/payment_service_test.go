package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tourmall-next/internal/config"
	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.BookingItem{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	walletSvc := NewWalletService(walletRepo, "USD")
	stripeCfg := &config.StripeConfig{
		Enabled:                 true,
		SecretKey:               "sk_test_123",
		WebhookSecret:           "whsec_test",
		SuccessURL:              "https://shop.example.com/pay/success",
		CancelURL:               "https://shop.example.com/pay/cancel",
		WebhookToleranceSeconds: 300,
	}
	return NewPaymentService(bookingRepo, paymentRepo, walletSvc, nil, stripeCfg), db
}

func createPendingBooking(t *testing.T, db *gorm.DB, userID uint, total string) *models.Booking {
	t.Helper()
	now := time.Now()
	booking := &models.Booking{
		BookingNo:      fmt.Sprintf("TM%d", now.UnixNano()),
		UserID:         userID,
		Status:         constants.BookingStatusPendingPayment,
		Currency:       "USD",
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

func createWalletAccount(t *testing.T, db *gorm.DB, userID uint, balance string) {
	t.Helper()
	now := time.Now()
	account := &models.WalletAccount{
		UserID:    userID,
		Balance:   money(t, balance),
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create wallet account failed: %v", err)
	}
}

func TestCreatePaymentWalletSuccess(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	booking := createPendingBooking(t, db, 7, "60.00")
	createWalletAccount(t, db, 7, "100.00")

	result, err := svc.CreatePayment(CreatePaymentInput{
		BookingID: booking.ID,
		UserID:    7,
		Method:    constants.PaymentMethodWallet,
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if !result.BookingPaid {
		t.Fatalf("expected booking_paid=true")
	}
	if result.Payment.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment status want success got %s", result.Payment.Status)
	}
	if result.Payment.SucceededAt == nil {
		t.Fatalf("wallet payment should set succeeded_at")
	}

	var refreshed models.Booking
	if err := db.First(&refreshed, booking.ID).Error; err != nil {
		t.Fatalf("reload booking failed: %v", err)
	}
	if refreshed.Status != constants.BookingStatusPaid {
		t.Fatalf("booking status want paid got %s", refreshed.Status)
	}
	if refreshed.PaidAt == nil {
		t.Fatalf("booking should set paid_at")
	}

	var account models.WalletAccount
	if err := db.Where("user_id = ?", 7).First(&account).Error; err != nil {
		t.Fatalf("reload wallet account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("wallet balance want 40.00 got %s", account.Balance.String())
	}
}

func TestCreatePaymentWalletInsufficientBalance(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	booking := createPendingBooking(t, db, 7, "60.00")
	createWalletAccount(t, db, 7, "10.00")

	_, err := svc.CreatePayment(CreatePaymentInput{
		BookingID: booking.ID,
		UserID:    7,
		Method:    constants.PaymentMethodWallet,
	})
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("want ErrWalletInsufficientBalance got %v", err)
	}

	var refreshed models.Booking
	if err := db.First(&refreshed, booking.ID).Error; err != nil {
		t.Fatalf("reload booking failed: %v", err)
	}
	if refreshed.Status != constants.BookingStatusPendingPayment {
		t.Fatalf("booking should stay pending, got %s", refreshed.Status)
	}

	var account models.WalletAccount
	if err := db.Where("user_id = ?", 7).First(&account).Error; err != nil {
		t.Fatalf("reload wallet account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("failed debit must not touch balance, got %s", account.Balance.String())
	}
}

func TestCreatePaymentRejectsNonPayableBooking(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	booking := createPendingBooking(t, db, 7, "60.00")
	if err := db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("status", constants.BookingStatusCanceled).Error; err != nil {
		t.Fatalf("update booking failed: %v", err)
	}

	_, err := svc.CreatePayment(CreatePaymentInput{
		BookingID: booking.ID,
		UserID:    7,
		Method:    constants.PaymentMethodWallet,
	})
	if !errors.Is(err, ErrBookingNotPayable) {
		t.Fatalf("want ErrBookingNotPayable got %v", err)
	}
}

func createPendingStripePayment(t *testing.T, db *gorm.DB, booking *models.Booking, paymentNo string) *models.Payment {
	t.Helper()
	now := time.Now()
	payment := &models.Payment{
		PaymentNo:   paymentNo,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		Method:      constants.PaymentMethodStripe,
		Status:      constants.PaymentStatusPending,
		Amount:      booking.TotalAmount,
		Currency:    booking.Currency,
		ProviderRef: "cs_test_ref_" + paymentNo,
		PayURL:      "https://checkout.stripe.com/c/pay/" + paymentNo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return payment
}

func stripeWebhookRequest(t *testing.T, secret, paymentNo, bookingNo string, amountMinor int64) (string, []byte) {
	t.Helper()
	body := []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_ref_%s",
				"amount_total": %d,
				"currency": "usd",
				"payment_status": "paid",
				"status": "complete",
				"metadata": {"payment_no": %q, "booking_no": %q}
			}
		}
	}`, paymentNo, amountMinor, paymentNo, bookingNo))
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	header := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
	return header, body
}

func TestHandleStripeWebhookSettlesPayment(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	booking := createPendingBooking(t, db, 7, "60.00")
	payment := createPendingStripePayment(t, db, booking, "PAYTEST0001")

	header, body := stripeWebhookRequest(t, "whsec_test", payment.PaymentNo, booking.BookingNo, 6000)
	settled, err := svc.HandleStripeWebhook(header, body)
	if err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}
	if settled.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment status want success got %s", settled.Status)
	}
	if settled.SucceededAt == nil {
		t.Fatalf("settled payment should set succeeded_at")
	}

	var refreshed models.Booking
	if err := db.First(&refreshed, booking.ID).Error; err != nil {
		t.Fatalf("reload booking failed: %v", err)
	}
	if refreshed.Status != constants.BookingStatusPaid {
		t.Fatalf("booking status want paid got %s", refreshed.Status)
	}

	// 重复投递同一事件，幂等返回已落账支付单
	again, err := svc.HandleStripeWebhook(header, body)
	if err != nil {
		t.Fatalf("duplicate webhook failed: %v", err)
	}
	if again.ID != settled.ID || again.Status != constants.PaymentStatusSuccess {
		t.Fatalf("duplicate webhook should be idempotent")
	}
}

func TestHandleStripeWebhookAmountMismatch(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	booking := createPendingBooking(t, db, 7, "60.00")
	payment := createPendingStripePayment(t, db, booking, "PAYTEST0002")

	header, body := stripeWebhookRequest(t, "whsec_test", payment.PaymentNo, booking.BookingNo, 5000)
	_, err := svc.HandleStripeWebhook(header, body)
	if !errors.Is(err, ErrPaymentAmountMismatch) {
		t.Fatalf("want ErrPaymentAmountMismatch got %v", err)
	}

	var refreshed models.Booking
	if err := db.First(&refreshed, booking.ID).Error; err != nil {
		t.Fatalf("reload booking failed: %v", err)
	}
	if refreshed.Status != constants.BookingStatusPendingPayment {
		t.Fatalf("mismatched amount must not mark booking paid, got %s", refreshed.Status)
	}
}

func TestHandleStripeWebhookInvalidSignature(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	booking := createPendingBooking(t, db, 7, "60.00")
	payment := createPendingStripePayment(t, db, booking, "PAYTEST0003")

	header, body := stripeWebhookRequest(t, "whsec_wrong", payment.PaymentNo, booking.BookingNo, 6000)
	_, err := svc.HandleStripeWebhook(header, body)
	if !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("want ErrPaymentSignatureInvalid got %v", err)
	}
}
