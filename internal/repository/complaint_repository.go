package repository

import (
	"errors"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
)

// ComplaintRepository 投诉数据访问接口
type ComplaintRepository interface {
	Create(complaint *models.Complaint) error
	Update(complaint *models.Complaint) error
	GetByID(id uint) (*models.Complaint, error)
	GetByIDAndUser(id uint, userID uint) (*models.Complaint, error)
	List(filter ComplaintListFilter) ([]models.Complaint, int64, error)
}

// GormComplaintRepository GORM 实现
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository 创建投诉仓库
func NewComplaintRepository(db *gorm.DB) *GormComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// Create 创建投诉
func (r *GormComplaintRepository) Create(complaint *models.Complaint) error {
	return r.db.Create(complaint).Error
}

// Update 更新投诉
func (r *GormComplaintRepository) Update(complaint *models.Complaint) error {
	return r.db.Save(complaint).Error
}

// GetByID 根据ID获取投诉
func (r *GormComplaintRepository) GetByID(id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.First(&complaint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &complaint, nil
}

// GetByIDAndUser 获取用户投诉详情
func (r *GormComplaintRepository) GetByIDAndUser(id uint, userID uint) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&complaint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &complaint, nil
}

// List 获取投诉列表
func (r *GormComplaintRepository) List(filter ComplaintListFilter) ([]models.Complaint, int64, error) {
	query := r.db.Model(&models.Complaint{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var complaints []models.Complaint
	if err := query.Order("id desc").Find(&complaints).Error; err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}
