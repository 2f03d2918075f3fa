package service

import (
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoAdminService 优惠码管理服务
type PromoAdminService struct {
	promoRepo      repository.PromoCodeRepository
	redemptionRepo repository.PromoRedemptionRepository
}

// NewPromoAdminService 创建优惠码管理服务
func NewPromoAdminService(promoRepo repository.PromoCodeRepository, redemptionRepo repository.PromoRedemptionRepository) *PromoAdminService {
	return &PromoAdminService{
		promoRepo:      promoRepo,
		redemptionRepo: redemptionRepo,
	}
}

// PromoCodeInput 创建/更新优惠码输入
type PromoCodeInput struct {
	Code            string
	Discount        models.Money
	ExpiresAt       time.Time
	UsageLimit      int
	AssignedUserIDs []uint
	ScopeType       string
	ScopeRefIDs     []uint
	IsActive        *bool
	Remark          string
}

func validatePromoInput(input PromoCodeInput) (string, string, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return "", "", ErrPromoNotFound
	}
	if input.Discount.Decimal.LessThanOrEqual(decimal.Zero) {
		return "", "", ErrPromoNotFound
	}
	if input.ExpiresAt.IsZero() {
		return "", "", ErrPromoNotFound
	}
	if input.UsageLimit < 0 {
		return "", "", ErrPromoNotFound
	}
	scopeType := strings.TrimSpace(strings.ToLower(input.ScopeType))
	switch scopeType {
	case constants.BookingItemTypeActivity, constants.BookingItemTypeItinerary, constants.BookingItemTypeProduct:
	default:
		return "", "", ErrPromoNotFound
	}
	return code, scopeType, nil
}

// Create 创建优惠码，码值唯一且大小写敏感
func (s *PromoAdminService) Create(input PromoCodeInput) (*models.PromoCode, error) {
	code, scopeType, err := validatePromoInput(input)
	if err != nil {
		return nil, err
	}
	exist, err := s.promoRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrPromoExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	promo := &models.PromoCode{
		Code:            code,
		Discount:        models.NewMoneyFromDecimal(input.Discount.Decimal.Round(2)),
		ExpiresAt:       input.ExpiresAt,
		UsageLimit:      input.UsageLimit,
		UsedCount:       0,
		AssignedUserIDs: models.UintArray(input.AssignedUserIDs),
		ScopeType:       scopeType,
		ScopeRefIDs:     models.UintArray(input.ScopeRefIDs),
		IsActive:        isActive,
		Remark:          strings.TrimSpace(input.Remark),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.promoRepo.Create(promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Update 更新优惠码，已用次数不可改写
func (s *PromoAdminService) Update(id uint, input PromoCodeInput) (*models.PromoCode, error) {
	if id == 0 {
		return nil, ErrPromoNotFound
	}
	existing, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromoNotFound
	}
	code, scopeType, err := validatePromoInput(input)
	if err != nil {
		return nil, err
	}
	if code != existing.Code {
		conflict, err := s.promoRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if conflict != nil && conflict.ID != id {
			return nil, ErrPromoExists
		}
	}

	existing.Code = code
	existing.Discount = models.NewMoneyFromDecimal(input.Discount.Decimal.Round(2))
	existing.ExpiresAt = input.ExpiresAt
	existing.UsageLimit = input.UsageLimit
	existing.AssignedUserIDs = models.UintArray(input.AssignedUserIDs)
	existing.ScopeType = scopeType
	existing.ScopeRefIDs = models.UintArray(input.ScopeRefIDs)
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	existing.Remark = strings.TrimSpace(input.Remark)
	existing.UpdatedAt = time.Now()
	if err := s.promoRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get 优惠码详情
func (s *PromoAdminService) Get(id uint) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}

// List 优惠码列表
func (s *PromoAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.promoRepo.List(filter)
}

// Delete 删除优惠码
func (s *PromoAdminService) Delete(id uint) error {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	return s.promoRepo.Delete(id)
}

// ListRedemptions 优惠码核销记录
func (s *PromoAdminService) ListRedemptions(filter repository.PromoRedemptionListFilter) ([]models.PromoRedemption, int64, error) {
	return s.redemptionRepo.ListByPromoCode(filter)
}
