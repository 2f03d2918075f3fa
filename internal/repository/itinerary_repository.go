package repository

import (
	"errors"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
)

// ItineraryRepository 行程数据访问接口
type ItineraryRepository interface {
	GetByID(id uint) (*models.Itinerary, error)
	ListByIDs(ids []uint) ([]models.Itinerary, error)
	Create(itinerary *models.Itinerary) error
	Update(itinerary *models.Itinerary) error
	Delete(id uint) error
	List(filter CatalogListFilter) ([]models.Itinerary, int64, error)
	WithTx(tx *gorm.DB) *GormItineraryRepository
}

// GormItineraryRepository GORM 实现
type GormItineraryRepository struct {
	db *gorm.DB
}

// NewItineraryRepository 创建行程仓库
func NewItineraryRepository(db *gorm.DB) *GormItineraryRepository {
	return &GormItineraryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormItineraryRepository) WithTx(tx *gorm.DB) *GormItineraryRepository {
	if tx == nil {
		return r
	}
	return &GormItineraryRepository{db: tx}
}

// GetByID 根据ID获取行程
func (r *GormItineraryRepository) GetByID(id uint) (*models.Itinerary, error) {
	var itinerary models.Itinerary
	if err := r.db.First(&itinerary, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &itinerary, nil
}

// ListByIDs 批量获取行程
func (r *GormItineraryRepository) ListByIDs(ids []uint) ([]models.Itinerary, error) {
	if len(ids) == 0 {
		return []models.Itinerary{}, nil
	}
	var itineraries []models.Itinerary
	if err := r.db.Where("id IN ?", ids).Find(&itineraries).Error; err != nil {
		return nil, err
	}
	return itineraries, nil
}

// Create 创建行程
func (r *GormItineraryRepository) Create(itinerary *models.Itinerary) error {
	return r.db.Create(itinerary).Error
}

// Update 更新行程
func (r *GormItineraryRepository) Update(itinerary *models.Itinerary) error {
	return r.db.Save(itinerary).Error
}

// Delete 删除行程
func (r *GormItineraryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Itinerary{}, id).Error
}

// List 获取行程列表
func (r *GormItineraryRepository) List(filter CatalogListFilter) ([]models.Itinerary, int64, error) {
	query := r.db.Model(&models.Itinerary{})

	if filter.OwnerID != 0 {
		query = query.Where("tour_guide_id = ?", filter.OwnerID)
	}
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var itineraries []models.Itinerary
	if err := query.Order("id desc").Find(&itineraries).Error; err != nil {
		return nil, 0, err
	}
	return itineraries, total, nil
}
