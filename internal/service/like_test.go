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

func TestLikeService_LikeItem_Success(t *testing.T) {
	// Arrange
	mockLikeRepo := new(mocks.LikeRepository)
	mockItemRepo := new(mocks.ItemRepository)
	likeService := service.NewLikeService(mockLikeRepo, mockItemRepo)
	ctx := context.Background()

	mockItemRepo.On("FindByID", ctx, "item-1").Return(&domain.Item{ID: "item-1"}, nil).Once()
	mockLikeRepo.On("Save", ctx, mock.MatchedBy(func(like *domain.Like) bool {
		return like.ItemID == "item-1" && like.UserID == "user-1" && like.ID != ""
	})).Return(nil).Once()

	// Act
	err := likeService.LikeItem(ctx, "item-1", "user-1")

	// Assert
	assert.NoError(t, err)
	mockLikeRepo.AssertExpectations(t)
	mockItemRepo.AssertExpectations(t)
}

func TestLikeService_LikeItem_Duplicate(t *testing.T) {
	// Arrange: 唯一索引冲突应翻译为 ErrAlreadyLiked
	mockLikeRepo := new(mocks.LikeRepository)
	mockItemRepo := new(mocks.ItemRepository)
	likeService := service.NewLikeService(mockLikeRepo, mockItemRepo)
	ctx := context.Background()

	mockItemRepo.On("FindByID", ctx, "item-1").Return(&domain.Item{ID: "item-1"}, nil).Once()
	mockLikeRepo.On("Save", ctx, mock.AnythingOfType("*domain.Like")).Return(repository.ErrDuplicateEntry).Once()

	// Act
	err := likeService.LikeItem(ctx, "item-1", "user-1")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyLiked))
}

func TestLikeService_LikeItem_ItemNotFound(t *testing.T) {
	// Arrange
	mockLikeRepo := new(mocks.LikeRepository)
	mockItemRepo := new(mocks.ItemRepository)
	likeService := service.NewLikeService(mockLikeRepo, mockItemRepo)
	ctx := context.Background()

	mockItemRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrItemNotFound).Once()

	// Act
	err := likeService.LikeItem(ctx, "missing", "user-1")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrItemNotFound))
	mockLikeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLikeService_UnlikeItem_NotLiked(t *testing.T) {
	// Arrange
	mockLikeRepo := new(mocks.LikeRepository)
	mockItemRepo := new(mocks.ItemRepository)
	likeService := service.NewLikeService(mockLikeRepo, mockItemRepo)
	ctx := context.Background()

	mockLikeRepo.On("Delete", ctx, "item-1", "user-1").Return(repository.ErrLikeNotFound).Once()

	// Act
	err := likeService.UnlikeItem(ctx, "item-1", "user-1")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrLikeNotFound))
}

func TestLikeService_CountLikes(t *testing.T) {
	// Arrange
	mockLikeRepo := new(mocks.LikeRepository)
	mockItemRepo := new(mocks.ItemRepository)
	likeService := service.NewLikeService(mockLikeRepo, mockItemRepo)
	ctx := context.Background()

	mockLikeRepo.On("CountByItem", ctx, "item-1").Return(int64(7), nil).Once()

	// Act
	count, err := likeService.CountLikes(ctx, "item-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
