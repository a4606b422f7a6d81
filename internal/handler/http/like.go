package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zittiandbuoni/taskino/internal/middleware"
	"github.com/zittiandbuoni/taskino/internal/service"
)

// LikeHandler 封装条目点赞相关的 HTTP 处理逻辑。
// 点赞路由都挂在必需认证中间件之后，user_id 一定存在。
type LikeHandler struct {
	likeService *service.LikeService
}

// NewLikeHandler 创建 LikeHandler 实例
func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// LikeItem 处理给条目点赞的请求。重复点赞返回 409。
func (h *LikeHandler) LikeItem(c *gin.Context) {
	itemID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	if err := h.likeService.LikeItem(c.Request.Context(), itemID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, gin.H{"message": "Item liked"})
}

// UnlikeItem 处理取消点赞的请求
func (h *LikeHandler) UnlikeItem(c *gin.Context) {
	itemID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	if err := h.likeService.UnlikeItem(c.Request.Context(), itemID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"message": "Item unliked"})
}

// CountLikes 返回条目当前的点赞数
func (h *LikeHandler) CountLikes(c *gin.Context) {
	itemID := c.Param("id")

	count, err := h.likeService.CountLikes(c.Request.Context(), itemID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"item_id": itemID, "count": count})
}
