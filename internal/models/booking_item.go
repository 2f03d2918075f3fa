package models

import (
	"time"
)

// BookingItem 订单条目（下单时的条目快照）
type BookingItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                            // 主键
	BookingID  uint      `gorm:"index;not null" json:"booking_id"`                // 订单ID
	ItemType   string    `gorm:"type:varchar(20);not null" json:"item_type"`      // 条目类型 activity/itinerary/product
	ItemID     uint      `gorm:"index;not null" json:"item_id"`                   // 条目ID
	Name       string    `gorm:"not null" json:"name"`                            // 条目名称快照
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"`   // 单价快照
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`              // 数量
	TotalPrice Money     `gorm:"type:decimal(20,2);not null" json:"total_price"`  // 小计
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                         // 更新时间
}

// TableName 指定表名
func (BookingItem) TableName() string {
	return "booking_items"
}
