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
	"github.com/zittiandbuoni/taskino/internal/repository"
	"github.com/zittiandbuoni/taskino/internal/repository/mocks"
	"github.com/zittiandbuoni/taskino/internal/service"
)

func setupRoomRouter(roomRepo *mocks.RoomRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	roomService := service.NewRoomService(roomRepo)
	handler := httpHandler.NewRoomHandler(roomService)

	router := gin.New()
	router.POST("/api/rooms", handler.CreateRoom)
	router.GET("/api/share/:shareCode", handler.ResolveRoom)
	return router
}

func TestRoomHandler_CreateRoom_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockRoomRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Room")).Return(nil).Once()
	router := setupRoomRouter(mockRoomRepo)

	body, _ := json.Marshal(gin.H{"name": "周末出游"})
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	var room domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	assert.Equal(t, "周末出游", room.Name)
	assert.Len(t, room.ShareCode, 6)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomHandler_CreateRoom_MissingName(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	router := setupRoomRouter(mockRoomRepo)

	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRoomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomHandler_ResolveRoom_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	expected := &domain.Room{ID: "room-1", Name: "周末出游", ShareCode: "a1b2c3"}
	mockRoomRepo.On("FindByShareCode", mock.Anything, "a1b2c3").Return(expected, nil).Once()
	router := setupRoomRouter(mockRoomRepo)

	req := httptest.NewRequest(http.MethodGet, "/api/share/a1b2c3", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var room domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	assert.Equal(t, "room-1", room.ID)
}

func TestRoomHandler_ResolveRoom_UnknownShareCode(t *testing.T) {
	// Arrange: 未知分享码应返回 404
	mockRoomRepo := new(mocks.RoomRepository)
	mockRoomRepo.On("FindByShareCode", mock.Anything, "zzzzzz").Return(nil, repository.ErrRoomNotFound).Once()
	router := setupRoomRouter(mockRoomRepo)

	req := httptest.NewRequest(http.MethodGet, "/api/share/zzzzzz", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}
