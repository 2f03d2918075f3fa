package models

import (
	"time"

	"gorm.io/gorm"
)

// Complaint 用户投诉
type Complaint struct {
	ID         uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID     uint           `gorm:"index;not null" json:"user_id"`                 // 用户ID
	BookingID  *uint          `gorm:"index" json:"booking_id"`                       // 关联订单ID
	Title      string         `gorm:"not null" json:"title"`                         // 标题
	Body       string         `gorm:"type:text;not null" json:"body"`                // 投诉内容
	Status     string         `gorm:"index;type:varchar(20);not null" json:"status"` // 状态 pending/resolved
	Reply      string         `gorm:"type:text" json:"reply"`                        // 处理回复
	ResolvedAt *time.Time     `json:"resolved_at"`                                   // 处理时间
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Complaint) TableName() string {
	return "complaints"
}
