package repository

import (
	"errors"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository 活动数据访问接口
type ActivityRepository interface {
	GetByID(id uint) (*models.Activity, error)
	ListByIDs(ids []uint) ([]models.Activity, error)
	Create(activity *models.Activity) error
	Update(activity *models.Activity) error
	Delete(id uint) error
	List(filter CatalogListFilter) ([]models.Activity, int64, error)
	IncrementBookedCountBelowCapacity(id uint, delta int) (bool, error)
	DecrementBookedCount(id uint, delta int) error
	WithTx(tx *gorm.DB) *GormActivityRepository
}

// GormActivityRepository GORM 实现
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动仓库
func NewActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// WithTx 绑定事务
func (r *GormActivityRepository) WithTx(tx *gorm.DB) *GormActivityRepository {
	if tx == nil {
		return r
	}
	return &GormActivityRepository{db: tx}
}

// GetByID 根据ID获取活动
func (r *GormActivityRepository) GetByID(id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// ListByIDs 批量获取活动
func (r *GormActivityRepository) ListByIDs(ids []uint) ([]models.Activity, error) {
	if len(ids) == 0 {
		return []models.Activity{}, nil
	}
	var activities []models.Activity
	if err := r.db.Where("id IN ?", ids).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Create 创建活动
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return r.db.Create(activity).Error
}

// Update 更新活动
func (r *GormActivityRepository) Update(activity *models.Activity) error {
	return r.db.Save(activity).Error
}

// Delete 删除活动
func (r *GormActivityRepository) Delete(id uint) error {
	return r.db.Delete(&models.Activity{}, id).Error
}

// List 获取活动列表
func (r *GormActivityRepository) List(filter CatalogListFilter) ([]models.Activity, int64, error) {
	query := r.db.Model(&models.Activity{})

	if filter.OwnerID != 0 {
		query = query.Where("advertiser_id = ?", filter.OwnerID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR location LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var activities []models.Activity
	if err := query.Order("id desc").Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// IncrementBookedCountBelowCapacity 条件自增已预订人数，仅在未满员时生效。
func (r *GormActivityRepository) IncrementBookedCountBelowCapacity(id uint, delta int) (bool, error) {
	if delta <= 0 {
		delta = 1
	}
	result := r.db.Model(&models.Activity{}).
		Where("id = ?", id).
		Where("capacity = 0 OR booked_count + ? <= capacity", delta).
		UpdateColumn("booked_count", gorm.Expr("booked_count + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementBookedCount 回退已预订人数
func (r *GormActivityRepository) DecrementBookedCount(id uint, delta int) error {
	if delta <= 0 {
		delta = 1
	}
	return r.db.Model(&models.Activity{}).
		Where("id = ?", id).
		Where("booked_count >= ?", delta).
		UpdateColumn("booked_count", gorm.Expr("booked_count - ?", delta)).Error
}
