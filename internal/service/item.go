package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
)

// ImageCleaner 在条目被删除后回收其关联图片。
// 实际的删除由后台任务执行，这里只负责入队。
type ImageCleaner interface {
	EnqueueImageCleanup(ctx context.Context, imageURL string) error
}

// CreateItemInput 是插入新条目的字段集合。
// Completed 和 Archived 不在其中：新条目总是以 false/false 落库。
type CreateItemInput struct {
	Title       string
	Description string
	Category    string
	Location    *domain.Location
	StartAt     *time.Time
	EndAt       *time.Time
	CreatedBy   string
	UserID      *string
	ImageURL    string
}

// ItemPatch 是部分更新的字段集合，nil 字段保持原值。
type ItemPatch struct {
	Title       *string
	Description *string
	Category    *string
	Location    *domain.Location
	Completed   *bool
	Archived    *bool
	StartAt     *time.Time
	EndAt       *time.Time
	ImageURL    *string
}

// ItemService 负责清单条目的读写，并在每次成功的写操作后
// 把变更事件发布到房间频道。发布失败只记日志不回滚——
// 实时推送是尽力而为，订阅端总能通过重新拉取列表恢复。
type ItemService struct {
	itemRepo  repository.ItemRepository
	roomRepo  repository.RoomRepository
	publisher repository.EventPublisher
	cleaner   ImageCleaner
}

// NewItemService 创建 ItemService 实例。cleaner 可以为 nil（不回收图片）。
func NewItemService(itemRepo repository.ItemRepository, roomRepo repository.RoomRepository, publisher repository.EventPublisher, cleaner ImageCleaner) *ItemService {
	if itemRepo == nil {
		panic("ItemRepository cannot be nil for ItemService")
	}
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for ItemService")
	}
	if publisher == nil {
		panic("EventPublisher cannot be nil for ItemService")
	}
	return &ItemService{
		itemRepo:  itemRepo,
		roomRepo:  roomRepo,
		publisher: publisher,
		cleaner:   cleaner,
	}
}

// ListItems 返回房间某一分区的全部条目，created_at 降序。
func (s *ItemService) ListItems(ctx context.Context, roomID string, archived bool) ([]domain.Item, error) {
	items, err := s.itemRepo.ListByRoom(ctx, roomID, archived)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "archived": archived}).
			WithError(err).Error("Failed to list items")
		return nil, ErrInternalServer
	}
	return items, nil
}

// CreateItem 在房间内插入一条新条目并广播 insert 事件。
func (s *ItemService) CreateItem(ctx context.Context, roomID string, input CreateItemInput) (*domain.Item, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "title": input.Title})

	if input.Title == "" || input.CreatedBy == "" {
		return nil, ErrInvalidInput
	}
	if input.Category == "" {
		input.Category = domain.CategoryOther
	}
	if !domain.ValidCategory(input.Category) {
		return nil, ErrInvalidInput
	}
	if err := validateSchedule(input.StartAt, input.EndAt); err != nil {
		return nil, err
	}

	// 房间必须存在；条目只能属于恰好一个房间
	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to verify room before insert")
		return nil, ErrInternalServer
	}

	item := &domain.Item{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Completed:   false,
		Archived:    false,
		StartAt:     input.StartAt,
		EndAt:       input.EndAt,
		CreatedBy:   input.CreatedBy,
		UserID:      input.UserID,
		ImageURL:    input.ImageURL,
	}
	if input.Location != nil {
		loc := datatypes.NewJSONType(*input.Location)
		item.Location = &loc
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		logCtx.WithError(err).Error("Failed to save new item")
		return nil, ErrInternalServer
	}
	logCtx.WithField("item_id", item.ID).Info("Item created successfully")

	s.publish(ctx, roomID, domain.ChangeEvent{Type: domain.EventInsert, Item: *item})
	return item, nil
}

// UpdateItem 对条目做部分更新（完成切换、归档/取消归档、编辑字段）
// 并广播携带新状态的 update 事件。
func (s *ItemService) UpdateItem(ctx context.Context, id string, patch ItemPatch) (*domain.Item, error) {
	logCtx := logrus.WithField("item_id", id)

	current, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		logCtx.WithError(err).Error("Failed to load item before update")
		return nil, ErrInternalServer
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, ErrInvalidInput
		}
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Category != nil {
		if !domain.ValidCategory(*patch.Category) {
			return nil, ErrInvalidInput
		}
		fields["category"] = *patch.Category
	}
	if patch.Location != nil {
		fields["location"] = datatypes.NewJSONType(*patch.Location)
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if patch.Archived != nil {
		fields["archived"] = *patch.Archived
	}
	if patch.StartAt != nil {
		fields["start_at"] = *patch.StartAt
	}
	if patch.EndAt != nil {
		fields["end_at"] = *patch.EndAt
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}

	// 空补丁直接返回当前状态，不落库也不发事件
	if len(fields) == 0 {
		return current, nil
	}

	// 以更新后的有效值校验日程边界
	effStart, effEnd := current.StartAt, current.EndAt
	if patch.StartAt != nil {
		effStart = patch.StartAt
	}
	if patch.EndAt != nil {
		effEnd = patch.EndAt
	}
	if err := validateSchedule(effStart, effEnd); err != nil {
		return nil, err
	}

	updated, err := s.itemRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		logCtx.WithError(err).Error("Failed to update item")
		return nil, ErrInternalServer
	}
	logCtx.Info("Item updated successfully")

	s.publish(ctx, updated.RoomID, domain.ChangeEvent{Type: domain.EventUpdate, Item: *updated})
	return updated, nil
}

// DeleteItem 永久删除条目并广播携带旧状态的 delete 事件。
// 数据层不限制条目必须已归档——"仅允许删除已归档条目"是展示层策略。
// 条目如带有图片，则入队一个图片回收任务。
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	logCtx := logrus.WithField("item_id", id)

	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		logCtx.WithError(err).Error("Failed to load item before delete")
		return ErrInternalServer
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		logCtx.WithError(err).Error("Failed to delete item")
		return ErrInternalServer
	}
	logCtx.Info("Item deleted")

	s.publish(ctx, item.RoomID, domain.ChangeEvent{Type: domain.EventDelete, Item: *item})

	if s.cleaner != nil && item.ImageURL != "" {
		if err := s.cleaner.EnqueueImageCleanup(ctx, item.ImageURL); err != nil {
			logCtx.WithError(err).Warn("Failed to enqueue image cleanup task")
		}
	}
	return nil
}

// publish 发布变更事件，失败只记日志
func (s *ItemService) publish(ctx context.Context, roomID string, event domain.ChangeEvent) {
	if err := s.publisher.PublishChange(ctx, roomID, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"room_id":    roomID,
			"event_type": event.Type,
			"item_id":    event.Item.ID,
		}).WithError(err).Warn("Failed to publish change event")
	}
}

// validateSchedule 校验 end_at 不早于 start_at
func validateSchedule(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidSchedule
	}
	return nil
}
