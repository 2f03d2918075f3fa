package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromoServiceTest(t *testing.T) (*PromoService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPromoService(repository.NewPromoCodeRepository(db)), db
}

func money(t *testing.T, value string) models.Money {
	t.Helper()
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}

func createSave10(t *testing.T, db *gorm.DB, mutate func(*models.PromoCode)) models.PromoCode {
	t.Helper()
	promo := models.PromoCode{
		Code:            "SAVE10",
		Discount:        money(t, "10.00"),
		ExpiresAt:       time.Now().Add(48 * time.Hour),
		UsageLimit:      5,
		UsedCount:       4,
		AssignedUserIDs: models.UintArray{1},
		ScopeType:       "product",
		ScopeRefIDs:     models.UintArray{101},
		IsActive:        true,
	}
	if mutate != nil {
		mutate(&promo)
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func cartWithProduct(productID uint) []models.BookingItem {
	return []models.BookingItem{
		{ItemType: "product", ItemID: productID, Quantity: 2},
	}
}

func TestPromoValidateHappyPath(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !decision.Valid {
		t.Fatalf("expected valid decision, got message %q", decision.Message)
	}
	if decision.Discount.String() != "10.00" {
		t.Fatalf("expected discount 10.00, got %s", decision.Discount.String())
	}

	payable := svc.Reconcile(money(t, "60.00"), decision.Discount)
	if payable.String() != "50.00" {
		t.Fatalf("expected payable 50.00, got %s", payable.String())
	}
}

func TestPromoValidateUnknownCode(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	decision, err := svc.Validate("NOPE", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgInvalid {
		t.Fatalf("expected invalid promo message, got %+v", decision)
	}
}

func TestPromoValidateCaseSensitive(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	decision, err := svc.Validate("save10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgInvalid {
		t.Fatalf("expected case mismatch to be invalid, got %+v", decision)
	}
}

func TestPromoValidateTrimsSurroundingWhitespace(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	decision, err := svc.Validate("  SAVE10  ", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !decision.Valid {
		t.Fatalf("expected surrounding whitespace to be trimmed, got %+v", decision)
	}
}

func TestPromoValidateInactive(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, func(p *models.PromoCode) {
		p.IsActive = false
	})

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgInvalid {
		t.Fatalf("expected inactive promo to be invalid, got %+v", decision)
	}
}

func TestPromoValidateExpired(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, func(p *models.PromoCode) {
		p.ExpiresAt = time.Now().Add(-time.Minute)
	})

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgExpired {
		t.Fatalf("expected expired message, got %+v", decision)
	}
}

func TestPromoValidateExpiryBoundaryStillValid(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, func(p *models.PromoCode) {
		// 到期时间在很近的将来，校验时刻尚未越过
		p.ExpiresAt = time.Now().Add(2 * time.Second)
	})

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !decision.Valid {
		t.Fatalf("expected promo at expiry boundary to be valid, got %+v", decision)
	}
}

func TestPromoValidateMaxUsage(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, func(p *models.PromoCode) {
		p.UsedCount = 5
	})

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgMaxUsage {
		t.Fatalf("expected max usage message, got %+v", decision)
	}
}

func TestPromoValidateUnlimitedUsage(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, func(p *models.PromoCode) {
		p.UsageLimit = 0
		p.UsedCount = 10000
	})

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !decision.Valid {
		t.Fatalf("expected unlimited promo to be valid, got %+v", decision)
	}
}

func TestPromoValidateNotAssigned(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	decision, err := svc.Validate("SAVE10", 2, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgNotEligible {
		t.Fatalf("expected eligibility message, got %+v", decision)
	}
}

func TestPromoValidateOpenAssignment(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, func(p *models.PromoCode) {
		p.AssignedUserIDs = nil
	})

	decision, err := svc.Validate("SAVE10", 99, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !decision.Valid {
		t.Fatalf("expected open promo to be valid for any user, got %+v", decision)
	}
}

func TestPromoValidateNotApplicable(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	decision, err := svc.Validate("SAVE10", 1, cartWithProduct(999))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgNotApplicable {
		t.Fatalf("expected applicability message, got %+v", decision)
	}
}

func TestPromoValidateScopeTypeMismatch(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	items := []models.BookingItem{
		{ItemType: "activity", ItemID: 101, Quantity: 1},
	}
	decision, err := svc.Validate("SAVE10", 1, items)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgNotApplicable {
		t.Fatalf("expected scope type mismatch to be not applicable, got %+v", decision)
	}
}

func TestPromoValidateCheckOrdering(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	// 同时过期、用完、不在名单、不适用，必须按顺序先报过期
	createSave10(t, db, func(p *models.PromoCode) {
		p.ExpiresAt = time.Now().Add(-time.Hour)
		p.UsedCount = 5
	})

	decision, err := svc.Validate("SAVE10", 2, cartWithProduct(999))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Message != PromoMsgExpired {
		t.Fatalf("expected expiry to win over later checks, got %+v", decision)
	}
}

func TestPromoValidateIdempotent(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	first, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	second, err := svc.Validate("SAVE10", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if first.Valid != second.Valid || first.Discount.String() != second.Discount.String() {
		t.Fatalf("expected repeated validation to be identical: %+v vs %+v", first, second)
	}

	var got models.PromoCode
	if err := db.Where("code = ?", "SAVE10").First(&got).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.UsedCount != 4 {
		t.Fatalf("validation must not consume usage, used_count = %d", got.UsedCount)
	}
}

func TestPromoReconcileClampsToZero(t *testing.T) {
	svc, _ := setupPromoServiceTest(t)

	payable := svc.Reconcile(money(t, "60.00"), money(t, "100.00"))
	if payable.String() != "0.00" {
		t.Fatalf("expected payable clamped to 0.00, got %s", payable.String())
	}
}

func TestPromoReconcileRounding(t *testing.T) {
	svc, _ := setupPromoServiceTest(t)

	payable := svc.Reconcile(
		models.NewMoneyFromDecimal(decimal.RequireFromString("10.005")),
		models.NewMoneyFromDecimal(decimal.Zero),
	)
	if payable.String() != "10.01" {
		t.Fatalf("expected half-up rounding to 10.01, got %s", payable.String())
	}
}

func TestPromoValidateFlatDiscountNotScaled(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	createSave10(t, db, nil)

	// 多数量、多条目购物车下固定面额保持不变
	items := []models.BookingItem{
		{ItemType: "product", ItemID: 101, Quantity: 7},
		{ItemType: "product", ItemID: 999, Quantity: 3},
	}
	decision, err := svc.Validate("SAVE10", 1, items)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !decision.Valid || decision.Discount.String() != "10.00" {
		t.Fatalf("expected flat discount 10.00, got %+v", decision)
	}
}
