package repository

import (
	"errors"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetItem(userID uint, itemType string, itemID uint) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateQuantity(id uint, quantity int) error
	Delete(userID uint, itemType string, itemID uint) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 获取购物车条目
func (r *GormCartRepository) GetItem(userID uint, itemType string, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert 创建或累加购物车条目
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	existing, err := r.GetItem(item.UserID, item.ItemType, item.ItemID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(item).Error
	}
	existing.Quantity += item.Quantity
	*item = *existing
	return r.db.Save(existing).Error
}

// UpdateQuantity 更新条目数量
func (r *GormCartRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", quantity).Error
}

// Delete 删除购物车条目
func (r *GormCartRepository) Delete(userID uint, itemType string, itemID uint) error {
	return r.db.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Delete(&models.CartItem{}).Error
}

// ClearByUser 清空用户购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
