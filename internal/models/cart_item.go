package models

import (
	"time"
)

// CartItem 购物车条目（同一用户同一条目唯一）
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID    uint      `gorm:"uniqueIndex:uk_cart_user_item;not null" json:"user_id"`       // 用户ID
	ItemType  string    `gorm:"uniqueIndex:uk_cart_user_item;type:varchar(20);not null" json:"item_type"` // 条目类型 activity/itinerary/product
	ItemID    uint      `gorm:"uniqueIndex:uk_cart_user_item;not null" json:"item_id"`       // 条目ID
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`                          // 数量
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
