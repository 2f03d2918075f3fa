package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPromoAdminServiceTest(t *testing.T) (*PromoAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_admin_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}, &models.PromoRedemption{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewPromoAdminService(
		repository.NewPromoCodeRepository(db),
		repository.NewPromoRedemptionRepository(db),
	)
	return svc, db
}

func promoInput(t *testing.T, code string) PromoCodeInput {
	t.Helper()
	return PromoCodeInput{
		Code:        code,
		Discount:    money(t, "15.00"),
		ExpiresAt:   time.Now().Add(72 * time.Hour),
		UsageLimit:  10,
		ScopeType:   "product",
		ScopeRefIDs: []uint{101},
	}
}

func TestPromoAdminCreateInactivePersistsDisabled(t *testing.T) {
	svc, db := setupPromoAdminServiceTest(t)

	inactive := false
	input := promoInput(t, "DISABLED15")
	input.IsActive = &inactive
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 落库后重新读取，禁用状态必须真实写入而不是被建表默认值覆盖
	var got models.PromoCode
	if err := db.Where("code = ?", "DISABLED15").First(&got).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected created promo to persist is_active = false")
	}

	validator := NewPromoService(repository.NewPromoCodeRepository(db))
	decision, err := validator.Validate("DISABLED15", 1, cartWithProduct(101))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if decision.Valid || decision.Message != PromoMsgInvalid {
		t.Fatalf("expected disabled promo to be invalid, got %+v", decision)
	}
}

func TestPromoAdminCreateDefaultsToActive(t *testing.T) {
	svc, db := setupPromoAdminServiceTest(t)

	if _, err := svc.Create(promoInput(t, "OPEN15")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var got models.PromoCode
	if err := db.Where("code = ?", "OPEN15").First(&got).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if !got.IsActive {
		t.Fatalf("expected promo without explicit flag to default to active")
	}
}

func TestPromoAdminUpdateCanDisable(t *testing.T) {
	svc, db := setupPromoAdminServiceTest(t)

	created, err := svc.Create(promoInput(t, "TOGGLE15"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	inactive := false
	input := promoInput(t, "TOGGLE15")
	input.IsActive = &inactive
	if _, err := svc.Update(created.ID, input); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	var got models.PromoCode
	if err := db.First(&got, created.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected updated promo to persist is_active = false")
	}
}
