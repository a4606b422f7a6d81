package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
)

// LikeService 负责点赞相关的业务逻辑。
// "每人每条目至多一个赞"由数据层的复合唯一索引保证，
// 这里只把冲突翻译成业务错误。
type LikeService struct {
	likeRepo repository.LikeRepository
	itemRepo repository.ItemRepository
}

// NewLikeService 创建 LikeService 实例。
func NewLikeService(likeRepo repository.LikeRepository, itemRepo repository.ItemRepository) *LikeService {
	if likeRepo == nil {
		panic("LikeRepository cannot be nil for LikeService")
	}
	if itemRepo == nil {
		panic("ItemRepository cannot be nil for LikeService")
	}
	return &LikeService{likeRepo: likeRepo, itemRepo: itemRepo}
}

// LikeItem 为条目添加一个来自认证用户的赞。
func (s *LikeService) LikeItem(ctx context.Context, itemID, userID string) error {
	logCtx := logrus.WithFields(logrus.Fields{"item_id": itemID, "user_id": userID})

	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		logCtx.WithError(err).Error("Failed to verify item before like")
		return ErrInternalServer
	}

	like := &domain.Like{
		ID:     uuid.NewString(),
		ItemID: itemID,
		UserID: userID,
	}
	if err := s.likeRepo.Save(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return ErrAlreadyLiked
		}
		logCtx.WithError(err).Error("Failed to save like")
		return ErrInternalServer
	}
	logCtx.Debug("Item liked")
	return nil
}

// UnlikeItem 移除认证用户对条目的赞。
func (s *LikeService) UnlikeItem(ctx context.Context, itemID, userID string) error {
	err := s.likeRepo.Delete(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrLikeNotFound) {
			return ErrLikeNotFound
		}
		logrus.WithFields(logrus.Fields{"item_id": itemID, "user_id": userID}).
			WithError(err).Error("Failed to delete like")
		return ErrInternalServer
	}
	return nil
}

// CountLikes 返回条目的点赞总数。
func (s *LikeService) CountLikes(ctx context.Context, itemID string) (int64, error) {
	count, err := s.likeRepo.CountByItem(ctx, itemID)
	if err != nil {
		logrus.WithField("item_id", itemID).WithError(err).Error("Failed to count likes")
		return 0, ErrInternalServer
	}
	return count, nil
}
