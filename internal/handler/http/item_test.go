package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpHandler "github.com/zittiandbuoni/taskino/internal/handler/http"
	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/middleware"
	"github.com/zittiandbuoni/taskino/internal/repository/mocks"
	"github.com/zittiandbuoni/taskino/internal/service"
)

func setupItemRouter(itemRepo *mocks.ItemRepository, roomRepo *mocks.RoomRepository, publisher *mocks.EventPublisher, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	itemService := service.NewItemService(itemRepo, roomRepo, publisher, nil)
	handler := httpHandler.NewItemHandler(itemService)

	router := gin.New()
	attachUser := func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}
	router.GET("/api/rooms/:roomId/items", handler.ListItems)
	router.POST("/api/rooms/:roomId/items", attachUser, handler.CreateItem)
	router.PATCH("/api/items/:id", handler.UpdateItem)
	router.DELETE("/api/items/:id", handler.DeleteItem)
	return router
}

func TestItemHandler_ListItems_ArchivedPartition(t *testing.T) {
	// Arrange: archived=true 应查询归档分区
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	itemRepo.On("ListByRoom", mock.Anything, "room-1", true).
		Return([]domain.Item{{ID: "item-1", RoomID: "room-1", Title: "老条目", Archived: true}}, nil).Once()
	router := setupItemRouter(itemRepo, roomRepo, publisher, "")

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/room-1/items?archived=true", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var items []domain.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.True(t, items[0].Archived)
	itemRepo.AssertExpectations(t)
}

func TestItemHandler_ListItems_EmptyReturnsArray(t *testing.T) {
	// Arrange: 空房间应返回 [] 而不是 null
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	itemRepo.On("ListByRoom", mock.Anything, "room-1", false).Return([]domain.Item{}, nil).Once()
	router := setupItemRouter(itemRepo, roomRepo, publisher, "")

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/room-1/items", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestItemHandler_CreateItem_AttachesAuthenticatedUser(t *testing.T) {
	// Arrange: 携带有效 token 创建时条目应直接归属该账号
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	roomRepo.On("FindByID", mock.Anything, "room-1").Return(&domain.Room{ID: "room-1"}, nil).Once()
	itemRepo.On("Save", mock.Anything, mock.MatchedBy(func(item *domain.Item) bool {
		return item.UserID != nil && *item.UserID == "user-1"
	})).Return(nil).Once()
	publisher.On("PublishChange", mock.Anything, "room-1", mock.Anything).Return(nil).Once()
	router := setupItemRouter(itemRepo, roomRepo, publisher, "user-1")

	body, _ := json.Marshal(gin.H{"title": "去海边", "category": "go", "created_by": "小明"})
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	itemRepo.AssertExpectations(t)
}

func TestItemHandler_CreateItem_GuestWithoutUser(t *testing.T) {
	// Arrange: 访客创建时 user_id 应保持为空
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	roomRepo.On("FindByID", mock.Anything, "room-1").Return(&domain.Room{ID: "room-1"}, nil).Once()
	itemRepo.On("Save", mock.Anything, mock.MatchedBy(func(item *domain.Item) bool {
		return item.UserID == nil
	})).Return(nil).Once()
	publisher.On("PublishChange", mock.Anything, "room-1", mock.Anything).Return(nil).Once()
	router := setupItemRouter(itemRepo, roomRepo, publisher, "")

	body, _ := json.Marshal(gin.H{"title": "买水", "category": "buy", "created_by": "路人甲"})
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/room-1/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	itemRepo.AssertExpectations(t)
}

func TestItemHandler_UpdateItem_InvalidSchedule(t *testing.T) {
	// Arrange
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	itemRepo.On("FindByID", mock.Anything, "item-1").
		Return(&domain.Item{ID: "item-1", RoomID: "room-1", Title: "行程"}, nil).Once()
	router := setupItemRouter(itemRepo, roomRepo, publisher, "")

	body := []byte(`{"start_at": "2026-09-10T12:00:00Z", "end_at": "2026-09-10T10:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/items/item-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	itemRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemHandler_DeleteItem_Success(t *testing.T) {
	// Arrange
	itemRepo := new(mocks.ItemRepository)
	roomRepo := new(mocks.RoomRepository)
	publisher := new(mocks.EventPublisher)
	item := &domain.Item{ID: "item-1", RoomID: "room-1", Title: "删我"}
	itemRepo.On("FindByID", mock.Anything, "item-1").Return(item, nil).Once()
	itemRepo.On("Delete", mock.Anything, "item-1").Return(nil).Once()
	publisher.On("PublishChange", mock.Anything, "room-1", mock.MatchedBy(func(event domain.ChangeEvent) bool {
		return event.Type == domain.EventDelete
	})).Return(nil).Once()
	router := setupItemRouter(itemRepo, roomRepo, publisher, "")

	req := httptest.NewRequest(http.MethodDelete, "/api/items/item-1", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	itemRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}
