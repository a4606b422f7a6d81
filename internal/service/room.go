package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
)

// RoomService 负责房间目录相关的业务逻辑：创建房间、按分享码解析房间。
type RoomService struct {
	roomRepo repository.RoomRepository
}

// NewRoomService 创建 RoomService 实例。
func NewRoomService(roomRepo repository.RoomRepository) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	return &RoomService{roomRepo: roomRepo}
}

// CreateRoom 创建一个新房间并为其生成分享码。
// 分享码碰撞（极小概率）不做重试，直接作为持久化失败上报给调用方。
func (s *RoomService) CreateRoom(ctx context.Context, name string) (*domain.Room, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	logCtx := logrus.WithField("room_name", name)

	code, err := generateShareCode()
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate share code")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("share_code", code)

	room := &domain.Room{
		ID:        uuid.NewString(),
		Name:      name,
		ShareCode: code,
	}

	if err := s.roomRepo.Save(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Error("Failed to save new room: share code collision")
			return nil, ErrInternalServer
		}
		logCtx.WithError(err).Error("Failed to save new room to database")
		return nil, ErrInternalServer
	}

	logCtx.WithField("room_id", room.ID).Info("Room created successfully")
	return room, nil
}

// ResolveRoom 根据分享码解析房间。恰好一条匹配，否则视为未找到。
func (s *RoomService) ResolveRoom(ctx context.Context, shareCode string) (*domain.Room, error) {
	logCtx := logrus.WithField("share_code", shareCode)

	room, err := s.roomRepo.FindByShareCode(ctx, shareCode)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Warn("Failed to resolve room by share code: not found")
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to resolve room by share code: repository error")
		return nil, ErrInternalServer
	}
	if room == nil { // 防御性检查
		logCtx.Warn("Repository returned nil room without error")
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// FindRoomByID 根据房间 ID 查找房间，供条目写路径和 WebSocket Handler 使用。
func (s *RoomService) FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithField("room_id", roomID).WithError(err).Error("FindRoomByID: repository error")
		return nil, ErrInternalServer
	}
	return room, nil
}

// generateShareCode 生成 6 位小写字母+数字的分享码
func generateShareCode() (string, error) {
	const letters = "0123456789abcdefghijklmnopqrstuvwxyz"
	const codeLength = 6

	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}
