package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity 活动（广告商发布的可预订活动）
type Activity struct {
	ID           uint           `gorm:"primarykey" json:"id"`                              // 主键
	AdvertiserID uint           `gorm:"index;not null" json:"advertiser_id"`               // 广告商用户ID
	Name         string         `gorm:"not null" json:"name"`                              // 活动名称
	Description  string         `gorm:"type:text" json:"description"`                      // 活动描述
	Location     string         `gorm:"type:varchar(200)" json:"location"`                 // 活动地点
	Category     string         `gorm:"index" json:"category"`                             // 活动分类
	Tags         StringArray    `gorm:"type:json" json:"tags"`                             // 标签
	Price        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	StartsAt     time.Time      `gorm:"index;not null" json:"starts_at"`                   // 开始时间
	Capacity     int            `gorm:"not null;default:0" json:"capacity"`                // 容量（0 表示不限制）
	BookedCount  int            `gorm:"not null;default:0" json:"booked_count"`            // 已预订人数
	IsActive     bool           `gorm:"not null" json:"is_active"`                         // 是否上架
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Activity) TableName() string {
	return "activities"
}
