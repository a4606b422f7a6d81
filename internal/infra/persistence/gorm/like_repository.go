package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
)

// GormLikeRepository 是 LikeRepository 接口的 GORM 实现
type GormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository 创建 GormLikeRepository 实例
func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	if db == nil {
		panic("database connection cannot be nil for GormLikeRepository")
	}
	return &GormLikeRepository{db: db}
}

// Save 插入点赞记录。(item_id, user_id) 冲突映射为 ErrDuplicateEntry。
func (r *GormLikeRepository) Save(ctx context.Context, like *domain.Like) error {
	err := r.db.WithContext(ctx).Create(like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save like (item: %s, user: %s): %w", like.ItemID, like.UserID, err)
	}
	return nil
}

// Delete 删除指定用户对指定条目的点赞
func (r *GormLikeRepository) Delete(ctx context.Context, itemID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ?", itemID, userID).
		Delete(&domain.Like{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete like (item: %s, user: %s): %w", itemID, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLikeNotFound
	}
	return nil
}

// CountByItem 返回条目的点赞总数
func (r *GormLikeRepository) CountByItem(ctx context.Context, itemID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Like{}).Where("item_id = ?", itemID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count likes for item %s: %w", itemID, err)
	}
	return count, nil
}
