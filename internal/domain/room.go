package domain

import "time"

// Room 表示一个通过分享码加入的协作清单房间。
// 创建后不可变：外部通过 ShareCode 识别，内部通过 ID 识别。
type Room struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:191;not null" json:"name"`
	ShareCode string    `gorm:"uniqueIndex;size:32;not null" json:"share_code"` // 用于加入房间的分享码，必须唯一
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
