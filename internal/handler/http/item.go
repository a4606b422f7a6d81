package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/domain"
	"github.com/zittiandbuoni/taskino/internal/middleware"
	"github.com/zittiandbuoni/taskino/internal/service"
)

// ItemHandler 封装清单条目相关的 HTTP 处理逻辑
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler 创建 ItemHandler 实例
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItemRequest 定义创建条目请求的结构体。
// created_by 是展示用的名字：访客填本地昵称，登录用户填显示名。
type CreateItemRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Location    *domain.Location `json:"location"`
	StartAt     *time.Time       `json:"start_at"`
	EndAt       *time.Time       `json:"end_at"`
	CreatedBy   string           `json:"created_by" binding:"required"`
	ImageURL    string           `json:"image_url"`
}

// UpdateItemRequest 定义部分更新请求的结构体，缺省字段保持原值
type UpdateItemRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Location    *domain.Location `json:"location"`
	Completed   *bool            `json:"completed"`
	Archived    *bool            `json:"archived"`
	StartAt     *time.Time       `json:"start_at"`
	EndAt       *time.Time       `json:"end_at"`
	ImageURL    *string          `json:"image_url"`
}

// ListItems 处理按分区列出房间条目的请求。
// archived=true 返回归档分区，其余情况返回活跃分区。
func (h *ItemHandler) ListItems(c *gin.Context) {
	roomID := c.Param("roomId")
	archived := c.Query("archived") == "true"

	items, err := h.itemService.ListItems(c.Request.Context(), roomID, archived)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if items == nil {
		items = []domain.Item{} // 保证返回 [] 而不是 null
	}

	SuccessResponse(c, http.StatusOK, items)
}

// CreateItem 处理在房间内插入新条目的请求。
// 如请求携带了有效 token，条目会直接归属到该账号。
func (h *ItemHandler) CreateItem(c *gin.Context) {
	roomID := c.Param("roomId")

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateItem: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	input := service.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		CreatedBy:   req.CreatedBy,
		ImageURL:    req.ImageURL,
	}
	if userID, ok := c.Get(middleware.ContextUserID); ok {
		uid := userID.(string)
		input.UserID = &uid
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), roomID, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, item)
}

// UpdateItem 处理条目的部分更新请求（完成切换、归档、编辑字段等）
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	itemID := c.Param("id")

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdateItem: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	patch := service.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Completed:   req.Completed,
		Archived:    req.Archived,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		ImageURL:    req.ImageURL,
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), itemID, patch)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, item)
}

// DeleteItem 处理永久删除条目的请求
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	itemID := c.Param("id")

	if err := h.itemService.DeleteItem(c.Request.Context(), itemID); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
