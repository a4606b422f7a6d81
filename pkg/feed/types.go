// Package feed 是房间条目的客户端订阅库。
// 它把服务端推送的变更事件对账到本地条目快照上，
// 供界面层直接渲染，无需自己维护列表状态。
package feed

import "time"

// 变更事件类型
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// Location 表示条目关联的地点信息
type Location struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Item 是服务端条目的线格式镜像
type Item struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"room_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Location    *Location  `json:"location,omitempty"`
	Completed   bool       `json:"completed"`
	Archived    bool       `json:"archived"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	UserID      *string    `json:"user_id,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ChangeEvent 是房间频道上单条变更的线格式
type ChangeEvent struct {
	Type string `json:"type"`
	Item Item   `json:"item"`
}
