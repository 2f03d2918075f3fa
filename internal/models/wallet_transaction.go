package models

import (
	"time"
)

// WalletTransaction 钱包流水（Reference 作为幂等键）
type WalletTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                    // 主键
	UserID        uint      `gorm:"index;not null" json:"user_id"`                           // 用户ID
	BookingID     *uint     `gorm:"index" json:"booking_id"`                                 // 关联订单ID
	Type          string    `gorm:"type:varchar(30);not null" json:"type"`                   // 交易类型
	Direction     string    `gorm:"type:varchar(10);not null" json:"direction"`              // 资金方向 in/out
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`               // 交易金额
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null" json:"balance_before"`       // 交易前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`        // 交易后余额
	Currency      string    `gorm:"type:varchar(10);not null" json:"currency"`               // 币种
	Reference     string    `gorm:"uniqueIndex;type:varchar(128);not null" json:"reference"` // 业务唯一引用
	Remark        string    `gorm:"type:varchar(255)" json:"remark"`                         // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
