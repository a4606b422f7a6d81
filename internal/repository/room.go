package repository

import (
	"context"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// RoomRepository 定义了房间数据的存储和检索操作。
type RoomRepository interface {
	// FindByID 根据房间 ID 查找房间。
	// 如果房间不存在，应返回 ErrRoomNotFound。
	FindByID(ctx context.Context, id string) (*domain.Room, error)

	// FindByShareCode 根据分享码查找房间。
	// 如果房间不存在，应返回 ErrRoomNotFound。
	FindByShareCode(ctx context.Context, code string) (*domain.Room, error)

	// Save 保存房间信息。分享码冲突时返回 ErrDuplicateEntry，
	// 由调用方决定如何上报（创建房间不做重试）。
	Save(ctx context.Context, room *domain.Room) error
}
