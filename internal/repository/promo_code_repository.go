package repository

import (
	"errors"
	"fmt"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	Create(promo *models.PromoCode) error
	Update(promo *models.PromoCode) error
	Delete(id uint) error
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	IncrementUsedCountBelowLimit(id uint) (bool, error)
	DecrementUsedCount(id uint) error
	WithTx(tx *gorm.DB) *GormPromoCodeRepository
}

// PromoCodeListFilter 优惠码列表筛选
type PromoCodeListFilter struct {
	Code       string
	ScopeType  string
	ScopeRefID uint
	IsActive   *bool
	Page       int
	PageSize   int
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) *GormPromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// GetByID 根据ID获取优惠码
func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCode 根据优惠码获取记录（区分大小写精确匹配）
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// Create 创建优惠码
func (r *GormPromoCodeRepository) Create(promo *models.PromoCode) error {
	return r.db.Create(promo).Error
}

// Update 更新优惠码
func (r *GormPromoCodeRepository) Update(promo *models.PromoCode) error {
	return r.db.Save(promo).Error
}

// Delete 删除优惠码
func (r *GormPromoCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromoCode{}, id).Error
}

// List 获取优惠码列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	query := r.db.Model(&models.PromoCode{})

	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.ScopeType != "" {
		query = query.Where("scope_type = ?", filter.ScopeType)
	}
	if filter.ScopeRefID > 0 {
		// scope_ref_ids 存储格式为 JSON 数组（例如 [1,2,3]），按边界匹配避免误命中（如 1 命中 11）。
		exact := fmt.Sprintf("[%d]", filter.ScopeRefID)
		prefix := fmt.Sprintf("[%d,%%", filter.ScopeRefID)
		middle := fmt.Sprintf("%%,%d,%%", filter.ScopeRefID)
		suffix := fmt.Sprintf("%%,%d]", filter.ScopeRefID)
		query = query.Where(
			"(scope_ref_ids = ? OR scope_ref_ids LIKE ? OR scope_ref_ids LIKE ? OR scope_ref_ids LIKE ?)",
			exact,
			prefix,
			middle,
			suffix,
		)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var promos []models.PromoCode
	if err := query.Order("id desc").Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// IncrementUsedCountBelowLimit 条件自增使用次数，仅在未达上限时生效。
// 返回 false 表示此刻已达上限（并发下的权威判定）。
func (r *GormPromoCodeRepository) IncrementUsedCountBelowLimit(id uint) (bool, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		Where("usage_limit = 0 OR used_count < usage_limit").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementUsedCount 回退一次使用次数（订单取消或超时释放）
func (r *GormPromoCodeRepository) DecrementUsedCount(id uint) error {
	return r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		Where("used_count > 0").
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
}
