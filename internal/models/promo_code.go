package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode 优惠码（固定面额减免）
type PromoCode struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                // 主键
	Code            string         `gorm:"uniqueIndex;type:varchar(64);not null" json:"code"`   // 优惠码（区分大小写）
	Discount        Money          `gorm:"type:decimal(20,2);not null" json:"discount"`         // 减免金额
	ExpiresAt       time.Time      `gorm:"index;not null" json:"expires_at"`                    // 过期时间（到期当刻仍可用）
	UsageLimit      int            `gorm:"not null;default:0" json:"usage_limit"`               // 使用次数上限（0 表示不限制）
	UsedCount       int            `gorm:"not null;default:0" json:"used_count"`                // 已使用次数
	AssignedUserIDs UintArray      `gorm:"type:json" json:"assigned_user_ids"`                  // 指定可用用户（空表示所有用户可用）
	ScopeType       string         `gorm:"type:varchar(20);not null" json:"scope_type"`         // 适用条目类型 activity/itinerary/product
	ScopeRefIDs     UintArray      `gorm:"type:json" json:"scope_ref_ids"`                      // 适用条目ID集合
	IsActive        bool           `gorm:"not null" json:"is_active"`                           // 是否启用
	Remark          string         `gorm:"type:varchar(255)" json:"remark"`                     // 备注
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// HasUsageLeft 是否还有剩余使用次数
func (p *PromoCode) HasUsageLeft() bool {
	return p.UsageLimit == 0 || p.UsedCount < p.UsageLimit
}

// IsAssignedTo 是否允许指定用户使用（未指定用户集合时所有用户可用）
func (p *PromoCode) IsAssignedTo(userID uint) bool {
	if len(p.AssignedUserIDs) == 0 {
		return true
	}
	return p.AssignedUserIDs.Contains(userID)
}
