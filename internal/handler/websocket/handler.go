package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/hub"
	"github.com/zittiandbuoni/taskino/internal/service"
)

// upgrader 配置 WebSocket 升级参数。
// 浏览器端从任意页面发起连接，来源校验交给部署层。
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler 负责把 HTTP 请求升级为房间的条目变更订阅
type Handler struct {
	hub         *hub.Hub
	roomService *service.RoomService
}

// NewHandler 创建 websocket Handler 实例
func NewHandler(h *hub.Hub, roomService *service.RoomService) *Handler {
	if h == nil {
		panic("Hub cannot be nil for websocket Handler")
	}
	if roomService == nil {
		panic("RoomService cannot be nil for websocket Handler")
	}
	return &Handler{hub: h, roomService: roomService}
}

// Subscribe 处理 GET /ws/rooms/:roomId。
// 升级成功后客户端会收到该房间后续的所有条目变更事件。
func (h *Handler) Subscribe(c *gin.Context) {
	roomID := c.Param("roomId")
	logCtx := logrus.WithField("room_id", roomID)

	// 升级前先确认房间存在，避免为无效房间维持连接
	if _, err := h.roomService.FindRoomByID(c.Request.Context(), roomID); err != nil {
		logCtx.WithError(err).Warn("WebSocket subscribe rejected: room not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时 gorilla 已经写了响应
		logCtx.WithError(err).Error("Failed to upgrade connection to WebSocket")
		return
	}

	client := hub.NewClient(h.hub, conn, roomID)

	registered := h.hub.QueueMessage(hub.HubMessage{
		Type:   "register",
		RoomID: roomID,
		Client: client,
	})
	if !registered {
		logCtx.Error("Hub queue full, rejecting new WebSocket client")
		client.CloseConn()
		return
	}

	client.Run()
	logCtx.Info("WebSocket client connected and registered")
}
