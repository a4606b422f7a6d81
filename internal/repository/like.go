package repository

import (
	"context"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// LikeRepository 定义了点赞数据的存储和检索操作。
type LikeRepository interface {
	// Save 插入一条点赞记录。同一 (item_id, user_id) 重复点赞时
	// 返回 ErrDuplicateEntry (由复合唯一索引保证)。
	Save(ctx context.Context, like *domain.Like) error

	// Delete 删除指定用户对指定条目的点赞。
	// 记录不存在时返回 ErrLikeNotFound。
	Delete(ctx context.Context, itemID, userID string) error

	// CountByItem 返回条目的点赞总数。
	CountByItem(ctx context.Context, itemID string) (int64, error)
}
