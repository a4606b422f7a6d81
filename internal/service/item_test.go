package service_test // 测试包

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/repository"
	"github.com/zittiandbuoni/taskino/internal/repository/mocks"
	"github.com/zittiandbuoni/taskino/internal/service"
)

// mockCleaner 是 service.ImageCleaner 的测试替身
type mockCleaner struct {
	mock.Mock
}

func (m *mockCleaner) EnqueueImageCleanup(ctx context.Context, imageURL string) error {
	args := m.Called(ctx, imageURL)
	return args.Error(0)
}

func newItemServiceForTest() (*service.ItemService, *mocks.ItemRepository, *mocks.RoomRepository, *mocks.EventPublisher, *mockCleaner) {
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	cleaner := new(mockCleaner)
	svc := service.NewItemService(itemRepo, roomRepo, publisher, cleaner)
	return svc, itemRepo, roomRepo, publisher, cleaner
}

// --- 测试 CreateItem 方法 ---

func TestItemService_CreateItem_Success(t *testing.T) {
	// Arrange
	svc, itemRepo, roomRepo, publisher, _ := newItemServiceForTest()
	ctx := context.Background()
	roomID := "room-1"

	roomRepo.On("FindByID", ctx, roomID).Return(&domain.Room{ID: roomID}, nil).Once()
	itemRepo.On("Save", ctx, mock.MatchedBy(func(item *domain.Item) bool {
		assert.NotEmpty(t, item.ID, "条目应被分配 ID")
		assert.Equal(t, roomID, item.RoomID)
		assert.False(t, item.Completed, "新条目必须是未完成状态")
		assert.False(t, item.Archived, "新条目必须是未归档状态")
		return true
	})).Return(nil).Once()
	// 成功落库后应发布一条 insert 事件
	publisher.On("PublishChange", ctx, roomID, mock.MatchedBy(func(event domain.ChangeEvent) bool {
		return event.Type == domain.EventInsert && event.Item.Title == "去海边"
	})).Return(nil).Once()

	// Act
	item, err := svc.CreateItem(ctx, roomID, service.CreateItemInput{
		Title:     "去海边",
		Category:  domain.CategoryGo,
		CreatedBy: "小明",
	})

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, domain.CategoryGo, item.Category)

	itemRepo.AssertExpectations(t)
	roomRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestItemService_CreateItem_DefaultsCategoryToOther(t *testing.T) {
	// Arrange
	svc, itemRepo, roomRepo, publisher, _ := newItemServiceForTest()
	ctx := context.Background()

	roomRepo.On("FindByID", ctx, "room-1").Return(&domain.Room{ID: "room-1"}, nil).Once()
	itemRepo.On("Save", ctx, mock.AnythingOfType("*domain.Item")).Return(nil).Once()
	publisher.On("PublishChange", ctx, "room-1", mock.Anything).Return(nil).Once()

	// Act: 不指定分类
	item, err := svc.CreateItem(ctx, "room-1", service.CreateItemInput{Title: "随便", CreatedBy: "guest"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOther, item.Category, "缺省分类应为 other")
}

func TestItemService_CreateItem_InvalidCategory(t *testing.T) {
	// Arrange
	svc, itemRepo, _, _, _ := newItemServiceForTest()

	// Act
	_, err := svc.CreateItem(context.Background(), "room-1", service.CreateItemInput{
		Title:     "无效分类",
		Category:  "sleep",
		CreatedBy: "guest",
	})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput), "错误类型应为 ErrInvalidInput")
	itemRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestItemService_CreateItem_EndBeforeStart(t *testing.T) {
	// Arrange
	svc, itemRepo, _, _, _ := newItemServiceForTest()
	start := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	// Act
	_, err := svc.CreateItem(context.Background(), "room-1", service.CreateItemInput{
		Title:     "时间倒挂",
		CreatedBy: "guest",
		StartAt:   &start,
		EndAt:     &end,
	})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidSchedule), "错误类型应为 ErrInvalidSchedule")
	itemRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestItemService_CreateItem_RoomNotFound(t *testing.T) {
	// Arrange
	svc, itemRepo, roomRepo, _, _ := newItemServiceForTest()
	ctx := context.Background()
	roomRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrRoomNotFound).Once()

	// Act
	_, err := svc.CreateItem(ctx, "missing", service.CreateItemInput{Title: "x", CreatedBy: "guest"})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
	itemRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestItemService_CreateItem_PublishFailureDoesNotFailRequest(t *testing.T) {
	// Arrange: 发布失败只记日志，写操作本身应成功返回
	svc, itemRepo, roomRepo, publisher, _ := newItemServiceForTest()
	ctx := context.Background()

	roomRepo.On("FindByID", ctx, "room-1").Return(&domain.Room{ID: "room-1"}, nil).Once()
	itemRepo.On("Save", ctx, mock.AnythingOfType("*domain.Item")).Return(nil).Once()
	publisher.On("PublishChange", ctx, "room-1", mock.Anything).Return(errors.New("redis down")).Once()

	// Act
	item, err := svc.CreateItem(ctx, "room-1", service.CreateItemInput{Title: "x", CreatedBy: "guest"})

	// Assert
	assert.NoError(t, err, "发布失败不应导致创建请求失败")
	assert.NotNil(t, item)
	publisher.AssertExpectations(t)
}

// --- 测试 UpdateItem 方法 ---

func TestItemService_UpdateItem_ArchiveToggle(t *testing.T) {
	// Arrange
	svc, itemRepo, _, publisher, _ := newItemServiceForTest()
	ctx := context.Background()
	itemID := "item-1"
	archived := true

	current := &domain.Item{ID: itemID, RoomID: "room-1", Title: "老条目", Archived: false}
	updated := &domain.Item{ID: itemID, RoomID: "room-1", Title: "老条目", Archived: true}

	itemRepo.On("FindByID", ctx, itemID).Return(current, nil).Once()
	itemRepo.On("UpdateFields", ctx, itemID, mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["archived"] == true && len(fields) == 1
	})).Return(updated, nil).Once()
	// update 事件应携带新状态
	publisher.On("PublishChange", ctx, "room-1", mock.MatchedBy(func(event domain.ChangeEvent) bool {
		return event.Type == domain.EventUpdate && event.Item.Archived
	})).Return(nil).Once()

	// Act
	result, err := svc.UpdateItem(ctx, itemID, service.ItemPatch{Archived: &archived})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Archived)
	itemRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestItemService_UpdateItem_ScheduleValidatedAgainstExisting(t *testing.T) {
	// Arrange: 只改 end_at，但结果早于已存的 start_at，应被拒绝
	svc, itemRepo, _, _, _ := newItemServiceForTest()
	ctx := context.Background()
	start := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	badEnd := start.Add(-time.Hour)

	current := &domain.Item{ID: "item-1", RoomID: "room-1", Title: "行程", StartAt: &start}
	itemRepo.On("FindByID", ctx, "item-1").Return(current, nil).Once()

	// Act
	_, err := svc.UpdateItem(ctx, "item-1", service.ItemPatch{EndAt: &badEnd})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidSchedule))
	itemRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemService_UpdateItem_NotFound(t *testing.T) {
	// Arrange
	svc, itemRepo, _, _, _ := newItemServiceForTest()
	ctx := context.Background()
	itemRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrItemNotFound).Once()

	title := "新标题"

	// Act
	_, err := svc.UpdateItem(ctx, "missing", service.ItemPatch{Title: &title})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrItemNotFound))
}

// --- 测试 DeleteItem 方法 ---

func TestItemService_DeleteItem_PublishesOldStateAndCleansImage(t *testing.T) {
	// Arrange
	svc, itemRepo, _, publisher, cleaner := newItemServiceForTest()
	ctx := context.Background()
	item := &domain.Item{ID: "item-1", RoomID: "room-1", Title: "带图条目", ImageURL: "https://cdn.example.com/img/abc.jpg"}

	itemRepo.On("FindByID", ctx, "item-1").Return(item, nil).Once()
	itemRepo.On("Delete", ctx, "item-1").Return(nil).Once()
	// delete 事件应携带被删前的旧状态
	publisher.On("PublishChange", ctx, "room-1", mock.MatchedBy(func(event domain.ChangeEvent) bool {
		return event.Type == domain.EventDelete && event.Item.ID == "item-1" && event.Item.Title == "带图条目"
	})).Return(nil).Once()
	cleaner.On("EnqueueImageCleanup", ctx, item.ImageURL).Return(nil).Once()

	// Act
	err := svc.DeleteItem(ctx, "item-1")

	// Assert
	assert.NoError(t, err)
	itemRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
	cleaner.AssertExpectations(t)
}

func TestItemService_DeleteItem_UnarchivedItemAllowed(t *testing.T) {
	// Arrange: 数据层不限制只能删除已归档条目
	svc, itemRepo, _, publisher, _ := newItemServiceForTest()
	ctx := context.Background()
	item := &domain.Item{ID: "item-2", RoomID: "room-1", Title: "活跃条目", Archived: false}

	itemRepo.On("FindByID", ctx, "item-2").Return(item, nil).Once()
	itemRepo.On("Delete", ctx, "item-2").Return(nil).Once()
	publisher.On("PublishChange", ctx, "room-1", mock.Anything).Return(nil).Once()

	// Act
	err := svc.DeleteItem(ctx, "item-2")

	// Assert
	assert.NoError(t, err, "未归档条目也允许直接删除")
}
