package models

import (
	"time"
)

// Payment 支付单（一次支付尝试）
type Payment struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                      // 主键
	PaymentNo   string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"payment_no"`   // 支付单号
	BookingID   uint       `gorm:"index;not null" json:"booking_id"`                          // 订单ID
	UserID      uint       `gorm:"index;not null" json:"user_id"`                             // 用户ID
	Method      string     `gorm:"type:varchar(20);not null" json:"method"`                   // 支付方式 stripe/wallet
	Status      string     `gorm:"index;type:varchar(20);not null" json:"status"`             // 支付状态
	Amount      Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                 // 支付金额
	Currency    string     `gorm:"type:varchar(10);not null" json:"currency"`                 // 支付币种
	ProviderRef string     `gorm:"index;type:varchar(128)" json:"provider_ref"`               // 渠道侧单号
	PayURL      string     `gorm:"type:varchar(500)" json:"pay_url"`                          // 收银台地址
	RawPayload  JSON       `gorm:"type:json" json:"-"`                                        // 渠道回调原文
	SucceededAt *time.Time `json:"succeeded_at"`                                              // 成功时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
