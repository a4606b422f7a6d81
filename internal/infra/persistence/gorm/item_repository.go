package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
)

// GormItemRepository 是 ItemRepository 接口的 GORM 实现
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository 创建 GormItemRepository 实例
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	if db == nil {
		panic("database connection cannot be nil for GormItemRepository")
	}
	return &GormItemRepository{db: db}
}

// FindByID 实现根据条目 ID 查找条目
func (r *GormItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrItemNotFound
		}
		return nil, fmt.Errorf("gorm: find item by id %s: %w", id, err)
	}
	return &item, nil
}

// ListByRoom 返回房间某一分区的全部条目，按 created_at 降序。
// 整个分区一次性加载，不分页。
func (r *GormItemRepository) ListByRoom(ctx context.Context, roomID string, archived bool) ([]domain.Item, error) {
	items := make([]domain.Item, 0)
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND archived = ?", roomID, archived).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list items for room %s (archived=%t): %w", roomID, archived, err)
	}
	return items, nil
}

// Save 实现插入新条目
func (r *GormItemRepository) Save(ctx context.Context, item *domain.Item) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save item (id: %s, room: %s): %w", item.ID, item.RoomID, err)
	}
	return nil
}

// UpdateFields 实现部分更新：仅更新 fields 中出现的列，随后读回完整行。
func (r *GormItemRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*domain.Item, error) {
	if len(fields) == 0 {
		// 空 patch 退化为读取当前行
		return r.FindByID(ctx, id)
	}
	result := r.db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("gorm: update item %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrItemNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete 实现永久删除条目。数据层不关心条目处于哪个分区。
func (r *GormItemRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete item %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrItemNotFound
	}
	return nil
}

// ClaimByGuest 把房间内匹配访客名且尚未认领的条目划归指定用户。
// WHERE user_id IS NULL 保证重复调用不会产生额外影响。
func (r *GormItemRepository) ClaimByGuest(ctx context.Context, roomID, guestName, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Item{}).
		Where("room_id = ? AND created_by = ? AND user_id IS NULL", roomID, guestName).
		Update("user_id", userID)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: claim guest items (room: %s, guest: %s): %w", roomID, guestName, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteArchivedBefore 删除 cutoff 之前归档的条目并返回被删除的行。
func (r *GormItemRepository) DeleteArchivedBefore(ctx context.Context, cutoff time.Time) ([]domain.Item, error) {
	var expired []domain.Item
	err := r.db.WithContext(ctx).
		Where("archived = ? AND updated_at < ?", true, cutoff).
		Find(&expired).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list expired archived items: %w", err)
	}
	if len(expired) == 0 {
		return expired, nil
	}
	ids := make([]string, 0, len(expired))
	for _, item := range expired {
		ids = append(ids, item.ID)
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Item{}).Error; err != nil {
		return nil, fmt.Errorf("gorm: delete expired archived items: %w", err)
	}
	return expired, nil
}
