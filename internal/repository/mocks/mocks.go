// Package mocks 提供 repository 接口的 testify mock 实现，仅用于测试。
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// RoomRepository 是 repository.RoomRepository 的 mock。
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if room, ok := args.Get(0).(*domain.Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomRepository) FindByShareCode(ctx context.Context, code string) (*domain.Room, error) {
	args := m.Called(ctx, code)
	if room, ok := args.Get(0).(*domain.Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// ItemRepository 是 repository.ItemRepository 的 mock。
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*domain.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) ListByRoom(ctx context.Context, roomID string, archived bool) ([]domain.Item, error) {
	args := m.Called(ctx, roomID, archived)
	if items, ok := args.Get(0).([]domain.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Save(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ItemRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*domain.Item, error) {
	args := m.Called(ctx, id, fields)
	if item, ok := args.Get(0).(*domain.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ItemRepository) ClaimByGuest(ctx context.Context, roomID, guestName, userID string) (int64, error) {
	args := m.Called(ctx, roomID, guestName, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ItemRepository) DeleteArchivedBefore(ctx context.Context, cutoff time.Time) ([]domain.Item, error) {
	args := m.Called(ctx, cutoff)
	if items, ok := args.Get(0).([]domain.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

// LikeRepository 是 repository.LikeRepository 的 mock。
type LikeRepository struct {
	mock.Mock
}

func (m *LikeRepository) Save(ctx context.Context, like *domain.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *LikeRepository) Delete(ctx context.Context, itemID, userID string) error {
	args := m.Called(ctx, itemID, userID)
	return args.Error(0)
}

func (m *LikeRepository) CountByItem(ctx context.Context, itemID string) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

// UserRepository 是 repository.UserRepository 的 mock。
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// EventPublisher 是 repository.EventPublisher 的 mock。
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishChange(ctx context.Context, roomID string, event domain.ChangeEvent) error {
	args := m.Called(ctx, roomID, event)
	return args.Error(0)
}
