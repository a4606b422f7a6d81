package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/service"
)

// UploadHandler 封装图片上传的 HTTP 处理逻辑
type UploadHandler struct {
	uploadService *service.UploadService
}

// NewUploadHandler 创建 UploadHandler 实例
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadRequest 定义上传请求的结构体。
// data 是 base64 编码的图片内容，可带 data URL 前缀。
type UploadRequest struct {
	Data     string `json:"data" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// UploadImage 把图片上传到对象存储并返回可公开访问的 URL
func (h *UploadHandler) UploadImage(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UploadImage: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: data and filename are required")
		return
	}

	imageURL, err := h.uploadService.Upload(c.Request.Context(), req.Data, req.Filename)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, gin.H{"url": imageURL})
}
