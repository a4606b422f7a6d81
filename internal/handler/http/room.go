package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/service"
)

// RoomHandler 封装了房间目录相关的 HTTP 处理逻辑
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoomRequest 定义创建房间请求的结构体
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateRoom 处理创建新房间的请求。任何人（包括匿名访客）都可以创建房间。
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name is required")
		return
	}
	logCtx := logrus.WithField("room_name", req.Name)

	room, err := h.roomService.CreateRoom(c.Request.Context(), req.Name)
	if err != nil {
		logCtx.WithError(err).Error("Handler.CreateRoom: Failed to create room via service")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithFields(logrus.Fields{"room_id": room.ID, "share_code": room.ShareCode}).Info("Handler.CreateRoom: Room created successfully")
	SuccessResponse(c, http.StatusCreated, room)
}

// ResolveRoom 处理按分享码解析房间的请求。
// 带着未知分享码进入房间视图会得到 404 的 "room not found" 状态。
func (h *RoomHandler) ResolveRoom(c *gin.Context) {
	shareCode := c.Param("shareCode")
	logCtx := logrus.WithField("share_code", shareCode)

	room, err := h.roomService.ResolveRoom(c.Request.Context(), shareCode)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.ResolveRoom: Failed to resolve room")
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, room)
}
