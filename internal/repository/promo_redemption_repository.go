package repository

import (
	"errors"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
)

// PromoRedemptionRepository 优惠码核销记录数据访问接口
type PromoRedemptionRepository interface {
	Create(redemption *models.PromoRedemption) error
	GetByBookingID(bookingID uint) (*models.PromoRedemption, error)
	CountByUser(promoCodeID, userID uint) (int64, error)
	ListByPromoCode(filter PromoRedemptionListFilter) ([]models.PromoRedemption, int64, error)
	DeleteByBookingID(bookingID uint) error
	WithTx(tx *gorm.DB) *GormPromoRedemptionRepository
}

// PromoRedemptionListFilter 核销记录列表筛选
type PromoRedemptionListFilter struct {
	PromoCodeID uint
	UserID      uint
	Page        int
	PageSize    int
}

// GormPromoRedemptionRepository GORM 实现
type GormPromoRedemptionRepository struct {
	db *gorm.DB
}

// NewPromoRedemptionRepository 创建核销记录仓库
func NewPromoRedemptionRepository(db *gorm.DB) *GormPromoRedemptionRepository {
	return &GormPromoRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoRedemptionRepository) WithTx(tx *gorm.DB) *GormPromoRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormPromoRedemptionRepository{db: tx}
}

// Create 创建核销记录
func (r *GormPromoRedemptionRepository) Create(redemption *models.PromoRedemption) error {
	return r.db.Create(redemption).Error
}

// GetByBookingID 根据订单ID获取核销记录
func (r *GormPromoRedemptionRepository) GetByBookingID(bookingID uint) (*models.PromoRedemption, error) {
	var redemption models.PromoRedemption
	if err := r.db.Where("booking_id = ?", bookingID).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// CountByUser 获取用户对某优惠码的核销次数
func (r *GormPromoRedemptionRepository) CountByUser(promoCodeID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PromoRedemption{}).
		Where("promo_code_id = ? AND user_id = ?", promoCodeID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByPromoCode 获取核销记录列表
func (r *GormPromoRedemptionRepository) ListByPromoCode(filter PromoRedemptionListFilter) ([]models.PromoRedemption, int64, error) {
	query := r.db.Model(&models.PromoRedemption{})
	if filter.PromoCodeID > 0 {
		query = query.Where("promo_code_id = ?", filter.PromoCodeID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var redemptions []models.PromoRedemption
	if err := query.Order("id desc").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}

// DeleteByBookingID 删除订单核销记录（取消或超时释放时调用）
func (r *GormPromoRedemptionRepository) DeleteByBookingID(bookingID uint) error {
	return r.db.Where("booking_id = ?", bookingID).Delete(&models.PromoRedemption{}).Error
}
