package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/repository"
)

// ClaimService 负责把匿名访客发布的条目划归认证账号。
// 对应的 SQL 守卫 (user_id IS NULL) 使整个操作幂等：
// 重复认领只会影响零行，不会改写已认领的条目。
type ClaimService struct {
	itemRepo repository.ItemRepository
	roomRepo repository.RoomRepository
}

// NewClaimService 创建 ClaimService 实例。
func NewClaimService(itemRepo repository.ItemRepository, roomRepo repository.RoomRepository) *ClaimService {
	if itemRepo == nil {
		panic("ItemRepository cannot be nil for ClaimService")
	}
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for ClaimService")
	}
	return &ClaimService{itemRepo: itemRepo, roomRepo: roomRepo}
}

// ClaimGuestItems 把房间内 created_by 等于 guestName 且尚未认领的条目
// 全部划归 userID，返回受影响的条目数。created_by 文本保持不变。
func (s *ClaimService) ClaimGuestItems(ctx context.Context, roomID, guestName, userID string) (int64, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":    roomID,
		"guest_name": guestName,
		"user_id":    userID,
	})

	if guestName == "" || roomID == "" {
		return 0, ErrInvalidInput
	}

	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return 0, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to verify room before claim")
		return 0, ErrInternalServer
	}

	claimed, err := s.itemRepo.ClaimByGuest(ctx, roomID, guestName, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to claim guest items")
		return 0, ErrInternalServer
	}

	logCtx.WithField("claimed", claimed).Info("Guest items claimed")
	return claimed, nil
}
