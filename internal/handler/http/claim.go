package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/middleware"
	"github.com/zittiandbuoni/taskino/internal/service"
)

// ClaimHandler 封装访客条目认领的 HTTP 处理逻辑。
// 认领路由挂在可选认证之后，由处理器自己判定登录状态，
// 未登录的调用统一按 400 拒绝而不是 401。
type ClaimHandler struct {
	claimService *service.ClaimService
}

// NewClaimHandler 创建 ClaimHandler 实例
func NewClaimHandler(claimService *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// ClaimRequest 定义认领请求的结构体
type ClaimRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
}

// ClaimItems 把房间内某访客名下、尚无归属的条目批量归到当前账号。
// 操作是幂等的：重复调用匹配不到未归属的行，返回 0。
func (h *ClaimHandler) ClaimItems(c *gin.Context) {
	roomID := c.Param("roomId")

	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		ErrorResponse(c, http.StatusBadRequest, "User not authenticated.")
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.ClaimItems: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Guest name and room ID are required.")
		return
	}

	count, err := h.claimService.ClaimGuestItems(c.Request.Context(), roomID, req.GuestName, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d items claimed successfully!", count),
	})
}
