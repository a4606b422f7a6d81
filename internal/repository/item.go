package repository

import (
	"context"
	"time"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// ItemRepository 定义了清单条目数据的存储和检索操作。
type ItemRepository interface {
	// FindByID 根据条目 ID 查找条目。
	// 如果条目不存在，应返回 ErrItemNotFound。
	FindByID(ctx context.Context, id string) (*domain.Item, error)

	// ListByRoom 返回指定房间、指定分区 (active/archived) 的全部条目，
	// 按 created_at 降序排列。唯一的读路径，不分页。
	ListByRoom(ctx context.Context, roomID string, archived bool) ([]domain.Item, error)

	// Save 插入一条新条目。
	Save(ctx context.Context, item *domain.Item) error

	// UpdateFields 对条目做部分更新，未包含的字段保持原值。
	// 返回更新后的完整行；条目不存在时返回 ErrItemNotFound。
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*domain.Item, error)

	// Delete 永久删除条目。条目不存在时返回 ErrItemNotFound。
	// 数据层不限制条目必须处于 archived 分区，该限制属于展示层策略。
	Delete(ctx context.Context, id string) error

	// ClaimByGuest 将房间内 created_by 等于 guestName 且 user_id 为空的
	// 条目全部划归 userID，返回受影响的行数。user_id IS NULL 的守卫
	// 使该操作天然幂等。
	ClaimByGuest(ctx context.Context, roomID, guestName, userID string) (int64, error)

	// DeleteArchivedBefore 删除指定时间之前归档的条目，返回被删除的行，
	// 供保留期清理任务回收关联图片。
	DeleteArchivedBefore(ctx context.Context, cutoff time.Time) ([]domain.Item, error)
}
