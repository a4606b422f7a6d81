// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// User 表示一个已认证的账号。匿名访客不落库，
// 仅作为 Item.CreatedBy 中的展示名存在。
type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(191);uniqueIndex:idx_email;not null" json:"email"`
	DisplayName string    `gorm:"type:varchar(64);not null" json:"display_name"`
	Password    string    `gorm:"type:text;not null" json:"-"` // 存储的是哈希后的密码，不能为空
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}
