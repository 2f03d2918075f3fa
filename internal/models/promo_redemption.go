package models

import (
	"time"
)

// PromoRedemption 优惠码核销记录（每个订单至多一条，作为幂等键）
type PromoRedemption struct {
	ID             uint      `gorm:"primarykey" json:"id"`                               // 主键
	PromoCodeID    uint      `gorm:"index;not null" json:"promo_code_id"`                // 优惠码ID
	UserID         uint      `gorm:"index;not null" json:"user_id"`                      // 用户ID
	BookingID      uint      `gorm:"uniqueIndex;not null" json:"booking_id"`             // 订单ID（唯一）
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null" json:"discount_amount"` // 实际减免金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                            // 创建时间
}

// TableName 指定表名
func (PromoRedemption) TableName() string {
	return "promo_redemptions"
}
