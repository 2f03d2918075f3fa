package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/tourmall-next/internal/constants"
)

// Booking 预订订单
type Booking struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                        // 主键
	BookingNo      string         `gorm:"uniqueIndex;type:varchar(64);not null" json:"booking_no"`     // 订单号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                               // 用户ID
	Status         string         `gorm:"index;type:varchar(20);not null" json:"status"`               // 订单状态
	Currency       string         `gorm:"type:varchar(10);not null" json:"currency"`                   // 结算币种
	OriginalAmount Money          `gorm:"type:decimal(20,2);not null" json:"original_amount"`          // 原始金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null" json:"total_amount"`             // 应付金额
	PromoCodeID    *uint          `gorm:"index" json:"promo_code_id"`                                  // 使用的优惠码ID
	PromoCode      string         `gorm:"type:varchar(64)" json:"promo_code"`                          // 使用的优惠码快照
	ExpiresAt      time.Time      `gorm:"index" json:"expires_at"`                                     // 支付截止时间
	PaidAt         *time.Time     `json:"paid_at"`                                                     // 支付完成时间
	CanceledAt     *time.Time     `json:"canceled_at"`                                                 // 取消时间
	Remark         string         `gorm:"type:varchar(255)" json:"remark"`                             // 备注
	Items          []BookingItem  `gorm:"foreignKey:BookingID" json:"items"`                           // 订单条目
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Booking) TableName() string {
	return "bookings"
}

// IsPayable 是否可发起支付
func (b *Booking) IsPayable() bool {
	return b.Status == constants.BookingStatusPendingPayment
}
