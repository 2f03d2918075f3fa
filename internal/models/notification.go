package models

import (
	"time"
)

// Notification 站内通知
type Notification struct {
	ID        uint       `gorm:"primarykey" json:"id"`                        // 主键
	UserID    uint       `gorm:"index;not null" json:"user_id"`               // 用户ID
	Type      string     `gorm:"type:varchar(30);not null" json:"type"`       // 通知类型
	Title     string     `gorm:"not null" json:"title"`                       // 标题
	Body      string     `gorm:"type:text" json:"body"`                       // 内容
	Payload   JSON       `gorm:"type:json" json:"payload"`                    // 附加数据
	ReadAt    *time.Time `json:"read_at"`                                     // 阅读时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
