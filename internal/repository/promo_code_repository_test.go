package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/tourmall-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromoCodeRepositoryTest(t *testing.T) (*GormPromoCodeRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.PromoCode{},
		&models.PromoRedemption{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPromoCodeRepository(db), db
}

func TestPromoCodeRepositoryIncrementUsedCountBelowLimit(t *testing.T) {
	repo, db := setupPromoCodeRepositoryTest(t)

	promo := models.PromoCode{
		Code:       "SAVE10",
		Discount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		UsageLimit: 2,
		ScopeType:  "product",
		ScopeRefIDs: models.UintArray{1},
		IsActive:   true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	ok, err := repo.IncrementUsedCountBelowLimit(promo.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected first increment to succeed")
	}

	ok, err = repo.IncrementUsedCountBelowLimit(promo.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected second increment to succeed")
	}

	// 已达上限，第三次必须失败且计数不再变化
	ok, err = repo.IncrementUsedCountBelowLimit(promo.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if ok {
		t.Fatalf("expected increment over limit to be rejected")
	}

	got, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("get promo failed: %v", err)
	}
	if got.UsedCount != 2 {
		t.Fatalf("expected used_count 2, got %d", got.UsedCount)
	}
}

func TestPromoCodeRepositoryIncrementUnlimited(t *testing.T) {
	repo, db := setupPromoCodeRepositoryTest(t)

	promo := models.PromoCode{
		Code:       "free-pass",
		Discount:   models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		UsageLimit: 0,
		ScopeType:  "activity",
		IsActive:   true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		ok, err := repo.IncrementUsedCountBelowLimit(promo.ID)
		if err != nil {
			t.Fatalf("increment %d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("expected unlimited promo increment %d to succeed", i)
		}
	}

	got, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("get promo failed: %v", err)
	}
	if got.UsedCount != 5 {
		t.Fatalf("expected used_count 5, got %d", got.UsedCount)
	}
}

func TestPromoCodeRepositoryIncrementContention(t *testing.T) {
	repo, db := setupPromoCodeRepositoryTest(t)

	promo := models.PromoCode{
		Code:       "LIMITED3",
		Discount:   models.NewMoneyFromDecimal(decimal.RequireFromString("8.00")),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		UsageLimit: 3,
		ScopeType:  "product",
		IsActive:   true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	// 模拟多个请求同时抢占剩余名额，只有前 3 次自增生效
	const attempts = 10
	succeeded := 0
	for i := 0; i < attempts; i++ {
		ok, err := repo.IncrementUsedCountBelowLimit(promo.ID)
		if err != nil {
			t.Fatalf("increment %d failed: %v", i, err)
		}
		if ok {
			succeeded++
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected exactly 3 successful increments, got %d", succeeded)
	}

	got, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("get promo failed: %v", err)
	}
	if got.UsedCount != 3 {
		t.Fatalf("expected used_count 3, got %d", got.UsedCount)
	}
}

func TestPromoCodeRepositoryCodeCaseSensitive(t *testing.T) {
	repo, db := setupPromoCodeRepositoryTest(t)

	promo := models.PromoCode{
		Code:      "Save10",
		Discount:  models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		ScopeType: "product",
		IsActive:  true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	got, err := repo.GetByCode("SAVE10")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected case mismatch to return no promo")
	}

	got, err = repo.GetByCode("Save10")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if got == nil || got.ID != promo.ID {
		t.Fatalf("expected exact match to return promo")
	}
}
