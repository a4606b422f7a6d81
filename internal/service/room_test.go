package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
	"github.com/zittiandbuoni/taskino/internal/repository/mocks"
	"github.com/zittiandbuoni/taskino/internal/service"
)

func TestRoomService_CreateRoom_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()

	mockRoomRepo.On("Save", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		assert.NotEmpty(t, room.ID, "房间应被分配 ID")
		assert.Equal(t, "周末出游", room.Name)
		assert.Len(t, room.ShareCode, 6, "分享码应为 6 位")
		for _, r := range room.ShareCode {
			assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z'), "分享码只含小写字母和数字")
		}
		return true
	})).Return(nil).Once()

	// Act
	room, err := roomService.CreateRoom(ctx, "周末出游")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, room)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_EmptyName(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)

	// Act
	_, err := roomService.CreateRoom(context.Background(), "")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	mockRoomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomService_ResolveRoom_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()

	expected := &domain.Room{ID: "room-1", Name: "周末出游", ShareCode: "a1b2c3"}
	mockRoomRepo.On("FindByShareCode", ctx, "a1b2c3").Return(expected, nil).Once()

	// Act
	room, err := roomService.ResolveRoom(ctx, "a1b2c3")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected.ID, room.ID)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_ResolveRoom_NotFound(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()

	mockRoomRepo.On("FindByShareCode", ctx, "zzzzzz").Return(nil, repository.ErrRoomNotFound).Once()

	// Act
	_, err := roomService.ResolveRoom(ctx, "zzzzzz")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound), "未知分享码应映射为 ErrRoomNotFound")
}
