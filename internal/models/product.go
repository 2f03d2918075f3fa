package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品（卖家发布的纪念品等实体商品）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                              // 主键
	SellerID    uint           `gorm:"index;not null" json:"seller_id"`                   // 卖家用户ID
	Name        string         `gorm:"not null" json:"name"`                              // 商品名称
	Description string         `gorm:"type:text" json:"description"`                      // 商品描述
	Tags        StringArray    `gorm:"type:json" json:"tags"`                             // 标签
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	Stock       int            `gorm:"not null;default:0" json:"stock"`                   // 库存
	IsActive    bool           `gorm:"not null" json:"is_active"`                         // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
