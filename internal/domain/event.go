package domain

// 变更事件类型。与订阅端约定：insert/update 携带行的新状态，
// delete 携带被删除行的旧状态。
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// ChangeEvent 是房间条目集合的一次变更通知，
// 通过每个房间独立的频道推送给所有订阅者。
type ChangeEvent struct {
	Type string `json:"type"`
	Item Item   `json:"item"`
}
