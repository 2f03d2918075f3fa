package models

import (
	"time"

	"gorm.io/gorm"
)

// Itinerary 行程（导游发布的多站点行程）
type Itinerary struct {
	ID            uint           `gorm:"primarykey" json:"id"`                              // 主键
	TourGuideID   uint           `gorm:"index;not null" json:"tour_guide_id"`               // 导游用户ID
	Name          string         `gorm:"not null" json:"name"`                              // 行程名称
	Description   string         `gorm:"type:text" json:"description"`                      // 行程描述
	Locations     StringArray    `gorm:"type:json" json:"locations"`                        // 途径地点
	Language      string         `gorm:"type:varchar(50)" json:"language"`                  // 讲解语言
	Price         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	AvailableFrom time.Time      `gorm:"index" json:"available_from"`                       // 可预订开始日期
	AvailableTo   time.Time      `gorm:"index" json:"available_to"`                         // 可预订结束日期
	IsActive      bool           `gorm:"not null" json:"is_active"`                         // 是否上架
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Itinerary) TableName() string {
	return "itineraries"
}
