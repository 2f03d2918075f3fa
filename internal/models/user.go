package models

import (
	"time"

	"gorm.io/gorm"
)

// User 前台用户（游客、导游、广告商、商家）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                    // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`       // 邮箱
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`    // 用户名
	PasswordHash string         `gorm:"not null" json:"-"`                       // 密码哈希
	Role         string         `gorm:"index;not null" json:"role"`              // 角色（tourist/tour_guide/advertiser/seller）
	Status       string         `gorm:"index;not null" json:"status"`            // 状态（active/disabled）
	Nationality  string         `gorm:"type:varchar(64)" json:"nationality"`     // 国籍
	DateOfBirth  *time.Time     `json:"date_of_birth,omitempty"`                 // 出生日期
	LastLoginAt  *time.Time     `gorm:"index" json:"last_login_at,omitempty"`    // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
