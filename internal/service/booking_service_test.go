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

func setupBookingServiceTest(t *testing.T) (*BookingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:booking_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Itinerary{},
		&models.Product{},
		&models.CartItem{},
		&models.PromoCode{},
		&models.PromoRedemption{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	promoRepo := repository.NewPromoCodeRepository(db)
	svc := NewBookingService(
		repository.NewBookingRepository(db),
		repository.NewActivityRepository(db),
		repository.NewItineraryRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		promoRepo,
		repository.NewPromoRedemptionRepository(db),
		repository.NewPaymentRepository(db),
		NewPromoService(promoRepo),
		nil,
		30,
		"USD",
	)
	return svc, db
}

func createTestProduct(t *testing.T, db *gorm.DB, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID: 50,
		Name:     "Olive Wood Bowl",
		Price:    money(t, price),
		Stock:    stock,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestActivity(t *testing.T, db *gorm.DB, price string, capacity int) *models.Activity {
	t.Helper()
	activity := &models.Activity{
		AdvertiserID: 51,
		Name:         "Sunset Cruise",
		Price:        money(t, price),
		StartsAt:     time.Now().AddDate(0, 1, 0),
		Capacity:     capacity,
		IsActive:     true,
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("create activity failed: %v", err)
	}
	return activity
}

func createProductPromo(t *testing.T, db *gorm.DB, productID uint, mutate func(*models.PromoCode)) *models.PromoCode {
	t.Helper()
	promo := &models.PromoCode{
		Code:        "TRIP15",
		Discount:    money(t, "15.00"),
		ExpiresAt:   time.Now().Add(72 * time.Hour),
		UsageLimit:  3,
		ScopeType:   constants.BookingItemTypeProduct,
		ScopeRefIDs: models.UintArray{productID},
		IsActive:    true,
	}
	if mutate != nil {
		mutate(promo)
	}
	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func TestCreateBookingWithPromoConsumesUsage(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)
	promo := createProductPromo(t, db, product.ID, nil)

	booking, decision, err := svc.CreateBooking(CreateBookingInput{
		UserID:    7,
		Items:     []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 2}},
		PromoCode: "TRIP15",
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if decision == nil || !decision.Valid {
		t.Fatalf("expected valid promo decision, got %+v", decision)
	}
	if booking.TotalAmount.String() != "45.00" {
		t.Fatalf("total want 45.00 got %s", booking.TotalAmount.String())
	}
	if booking.PromoCodeID == nil || *booking.PromoCodeID != promo.ID {
		t.Fatalf("booking should snapshot promo id")
	}

	var refreshed models.PromoCode
	if err := db.First(&refreshed, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshed.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", refreshed.UsedCount)
	}

	var redemption models.PromoRedemption
	if err := db.Where("booking_id = ?", booking.ID).First(&redemption).Error; err != nil {
		t.Fatalf("redemption row missing: %v", err)
	}
	if redemption.DiscountAmount.String() != "15.00" {
		t.Fatalf("redemption discount want 15.00 got %s", redemption.DiscountAmount.String())
	}

	var stocked models.Product
	if err := db.First(&stocked, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stocked.Stock != 8 {
		t.Fatalf("stock want 8 got %d", stocked.Stock)
	}
}

func TestCreateBookingRejectedPromoDoesNotCreateBooking(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)
	createProductPromo(t, db, product.ID, func(p *models.PromoCode) {
		p.ExpiresAt = time.Now().Add(-time.Hour)
	})

	booking, decision, err := svc.CreateBooking(CreateBookingInput{
		UserID:    7,
		Items:     []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 1}},
		PromoCode: "TRIP15",
	})
	if err != nil {
		t.Fatalf("rejected promo must not surface an error: %v", err)
	}
	if booking != nil {
		t.Fatalf("booking must not be created on rejected promo")
	}
	if decision == nil || decision.Valid || decision.Message != PromoMsgExpired {
		t.Fatalf("expected expired rejection, got %+v", decision)
	}

	var count int64
	if err := db.Model(&models.Booking{}).Count(&count).Error; err != nil {
		t.Fatalf("count bookings failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no booking rows expected, got %d", count)
	}
}

func TestCreateBookingMaxUsageEnforcedAtCheckout(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)
	promo := createProductPromo(t, db, product.ID, func(p *models.PromoCode) {
		p.UsageLimit = 1
	})

	input := CreateBookingInput{
		UserID:    7,
		Items:     []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 1}},
		PromoCode: "TRIP15",
	}
	if _, _, err := svc.CreateBooking(input); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// 名额已被第一单占完
	booking, decision, err := svc.CreateBooking(input)
	if err != nil {
		t.Fatalf("raced booking must not surface an error: %v", err)
	}
	if booking != nil {
		t.Fatalf("raced booking must not be created")
	}
	if decision == nil || decision.Valid || decision.Message != PromoMsgMaxUsage {
		t.Fatalf("expected max usage rejection, got %+v", decision)
	}

	var refreshed models.PromoCode
	if err := db.First(&refreshed, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshed.UsedCount != 1 {
		t.Fatalf("raced attempt must not over-consume, used_count = %d", refreshed.UsedCount)
	}
}

func TestCreateBookingSoldOutRollsBackTransaction(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 1)
	promo := createProductPromo(t, db, product.ID, nil)

	_, _, err := svc.CreateBooking(CreateBookingInput{
		UserID:    7,
		Items:     []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 2}},
		PromoCode: "TRIP15",
	})
	if !errors.Is(err, ErrItemSoldOut) {
		t.Fatalf("want ErrItemSoldOut got %v", err)
	}

	var refreshed models.PromoCode
	if err := db.First(&refreshed, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshed.UsedCount != 0 {
		t.Fatalf("rollback must release promo usage, used_count = %d", refreshed.UsedCount)
	}

	var bookingCount int64
	if err := db.Model(&models.Booking{}).Count(&bookingCount).Error; err != nil {
		t.Fatalf("count bookings failed: %v", err)
	}
	if bookingCount != 0 {
		t.Fatalf("sold out checkout must not leave booking rows, got %d", bookingCount)
	}
}

func TestCancelBookingReleasesPromoAndInventory(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	activity := createTestActivity(t, db, "89.00", 5)
	promo := createProductPromo(t, db, 0, func(p *models.PromoCode) {
		p.ScopeType = constants.BookingItemTypeActivity
		p.ScopeRefIDs = models.UintArray{activity.ID}
	})

	booking, _, err := svc.CreateBooking(CreateBookingInput{
		UserID:    7,
		Items:     []CreateBookingItem{{ItemType: constants.BookingItemTypeActivity, ItemID: activity.ID, Quantity: 2}},
		PromoCode: "TRIP15",
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	canceled, err := svc.CancelBooking(booking.ID, 7)
	if err != nil {
		t.Fatalf("cancel booking failed: %v", err)
	}
	if canceled.Status != constants.BookingStatusCanceled {
		t.Fatalf("status want canceled got %s", canceled.Status)
	}

	var refreshedPromo models.PromoCode
	if err := db.First(&refreshedPromo, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshedPromo.UsedCount != 0 {
		t.Fatalf("cancel must release promo usage, used_count = %d", refreshedPromo.UsedCount)
	}

	var redemptionCount int64
	if err := db.Model(&models.PromoRedemption{}).Where("booking_id = ?", booking.ID).Count(&redemptionCount).Error; err != nil {
		t.Fatalf("count redemptions failed: %v", err)
	}
	if redemptionCount != 0 {
		t.Fatalf("redemption row should be removed on cancel")
	}

	var refreshedActivity models.Activity
	if err := db.First(&refreshedActivity, activity.ID).Error; err != nil {
		t.Fatalf("reload activity failed: %v", err)
	}
	if refreshedActivity.BookedCount != 0 {
		t.Fatalf("cancel must release capacity, booked_count = %d", refreshedActivity.BookedCount)
	}
}

func TestCancelBookingRejectsPaidBooking(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)

	booking, _, err := svc.CreateBooking(CreateBookingInput{
		UserID: 7,
		Items:  []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if err := db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("status", constants.BookingStatusPaid).Error; err != nil {
		t.Fatalf("update booking failed: %v", err)
	}

	if _, err := svc.CancelBooking(booking.ID, 7); !errors.Is(err, ErrBookingNotCancelable) {
		t.Fatalf("want ErrBookingNotCancelable got %v", err)
	}
}

func TestPreviewBookingHasNoSideEffects(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)
	promo := createProductPromo(t, db, product.ID, nil)

	preview, err := svc.PreviewBooking(CreateBookingInput{
		UserID:    7,
		Items:     []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 2}},
		PromoCode: "TRIP15",
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.OriginalAmount.String() != "60.00" {
		t.Fatalf("original want 60.00 got %s", preview.OriginalAmount.String())
	}
	if preview.TotalAmount.String() != "45.00" {
		t.Fatalf("total want 45.00 got %s", preview.TotalAmount.String())
	}

	var bookingCount int64
	if err := db.Model(&models.Booking{}).Count(&bookingCount).Error; err != nil {
		t.Fatalf("count bookings failed: %v", err)
	}
	if bookingCount != 0 {
		t.Fatalf("preview must not create bookings")
	}

	var refreshedPromo models.PromoCode
	if err := db.First(&refreshedPromo, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshedPromo.UsedCount != 0 {
		t.Fatalf("preview must not consume usage, used_count = %d", refreshedPromo.UsedCount)
	}

	var refreshedProduct models.Product
	if err := db.First(&refreshedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if refreshedProduct.Stock != 10 {
		t.Fatalf("preview must not deduct stock, got %d", refreshedProduct.Stock)
	}
}

func TestCreateBookingFromCartClearsCart(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "24.00", 10)
	if err := db.Create(&models.CartItem{
		UserID:   7,
		ItemType: constants.BookingItemTypeProduct,
		ItemID:   product.ID,
		Quantity: 3,
	}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	booking, _, err := svc.CreateBooking(CreateBookingInput{UserID: 7, FromCart: true})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if !booking.TotalAmount.Decimal.Equal(decimal.RequireFromString("72.00")) {
		t.Fatalf("total want 72.00 got %s", booking.TotalAmount.String())
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 7).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart should be cleared after checkout, got %d items", cartCount)
	}
}

func TestCreateBookingEmptyCart(t *testing.T) {
	svc, _ := setupBookingServiceTest(t)

	_, _, err := svc.CreateBooking(CreateBookingInput{UserID: 7, FromCart: true})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("want ErrCartEmpty got %v", err)
	}
}

func TestApplyPromoOnPendingBooking(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)
	promo := createProductPromo(t, db, product.ID, nil)

	booking, _, err := svc.CreateBooking(CreateBookingInput{
		UserID: 7,
		Items:  []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	updated, decision, err := svc.ApplyPromo(booking.ID, 7, "TRIP15")
	if err != nil {
		t.Fatalf("apply promo failed: %v", err)
	}
	if decision == nil || !decision.Valid {
		t.Fatalf("expected valid decision, got %+v", decision)
	}
	if updated.TotalAmount.String() != "45.00" {
		t.Fatalf("total want 45.00 got %s", updated.TotalAmount.String())
	}

	var refreshed models.PromoCode
	if err := db.First(&refreshed, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshed.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", refreshed.UsedCount)
	}

	// 已有优惠码的订单拒绝二次叠加
	if _, _, err := svc.ApplyPromo(booking.ID, 7, "TRIP15"); !errors.Is(err, ErrBookingAmountLocked) {
		t.Fatalf("want ErrBookingAmountLocked got %v", err)
	}
}

func TestApplyPromoLockedByActivePayment(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)
	createProductPromo(t, db, product.ID, nil)

	booking, _, err := svc.CreateBooking(CreateBookingInput{
		UserID: 7,
		Items:  []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if err := db.Create(&models.Payment{
		PaymentNo: "PAYLOCK0001",
		BookingID: booking.ID,
		UserID:    7,
		Method:    constants.PaymentMethodStripe,
		Status:    constants.PaymentStatusPending,
		Amount:    booking.TotalAmount,
		Currency:  booking.Currency,
	}).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	if _, _, err := svc.ApplyPromo(booking.ID, 7, "TRIP15"); !errors.Is(err, ErrBookingAmountLocked) {
		t.Fatalf("want ErrBookingAmountLocked got %v", err)
	}
}

func TestCancelExpiredBookingIdempotent(t *testing.T) {
	svc, db := setupBookingServiceTest(t)
	product := createTestProduct(t, db, "30.00", 10)

	booking, _, err := svc.CreateBooking(CreateBookingInput{
		UserID: 7,
		Items:  []CreateBookingItem{{ItemType: constants.BookingItemTypeProduct, ItemID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if err := db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate booking failed: %v", err)
	}

	first, err := svc.CancelExpiredBooking(booking.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if first.Status != constants.BookingStatusCanceled {
		t.Fatalf("status want canceled got %s", first.Status)
	}

	again, err := svc.CancelExpiredBooking(booking.ID)
	if err != nil {
		t.Fatalf("repeated cancel failed: %v", err)
	}
	if again.Status != constants.BookingStatusCanceled {
		t.Fatalf("repeated cancel should keep canceled, got %s", again.Status)
	}

	var refreshedProduct models.Product
	if err := db.First(&refreshedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if refreshedProduct.Stock != 10 {
		t.Fatalf("repeated cancel must not double-restore stock, got %d", refreshedProduct.Stock)
	}
}
