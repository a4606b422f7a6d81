package domain

import "time"

// Like 表示某个认证用户对某条目的点赞。
// (item_id, user_id) 上的复合唯一索引保证每人每条目至多一个赞。
type Like struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_item_user" json:"item_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_item_user" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
