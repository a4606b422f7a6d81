package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Item 的分类枚举值。
const (
	CategoryGo    = "go"
	CategoryEat   = "eat"
	CategoryBuy   = "buy"
	CategoryDo    = "do"
	CategoryOther = "other"
)

// ValidCategory 判断给定分类是否为合法枚举值。
func ValidCategory(c string) bool {
	switch c {
	case CategoryGo, CategoryEat, CategoryBuy, CategoryDo, CategoryOther:
		return true
	}
	return false
}

// Location 表示条目关联的地点信息，整体以 jsonb 存储。
type Location struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Item 表示房间内的一条清单条目。
// Archived 和 Completed 是相互独立的布尔状态；
// UserID 为空表示该条目由匿名访客创建，尚未被认领。
type Item struct {
	ID          string                         `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID      string                         `gorm:"type:uuid;index;not null" json:"room_id"`
	Title       string                         `gorm:"size:255;not null" json:"title"`
	Description string                         `gorm:"type:text" json:"description,omitempty"`
	Category    string                         `gorm:"size:16;not null;default:other" json:"category"`
	Location    *datatypes.JSONType[Location]  `gorm:"type:jsonb" json:"location,omitempty"`
	Completed   bool                           `gorm:"not null;default:false" json:"completed"`
	Archived    bool                           `gorm:"not null;default:false;index" json:"archived"`
	StartAt     *time.Time                     `json:"start_at,omitempty"`
	EndAt       *time.Time                     `json:"end_at,omitempty"`
	CreatedBy   string                         `gorm:"size:64;not null" json:"created_by"`
	UserID      *string                        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ImageURL    string                         `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt   time.Time                      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time                      `gorm:"autoUpdateTime" json:"-"`
}

// TableName 保持与原有 schema 的表名一致。
func (Item) TableName() string { return "taskino_items" }
