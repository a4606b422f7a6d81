package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/repository"
	"github.com/zittiandbuoni/taskino/internal/service"
	"github.com/zittiandbuoni/taskino/internal/tasks"
)

// ImageCleanupHandler 处理已删除条目的图片回收任务
type ImageCleanupHandler struct {
	uploadService *service.UploadService
}

// NewImageCleanupHandler 创建 Handler 实例
func NewImageCleanupHandler(uploadService *service.UploadService) *ImageCleanupHandler {
	return &ImageCleanupHandler{uploadService: uploadService}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *ImageCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.ImageCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("image_url", payload.ImageURL)

	if h.uploadService == nil {
		logCtx.Warn("Upload service not configured, skipping image cleanup")
		return nil
	}

	if err := h.uploadService.Delete(ctx, payload.ImageURL); err != nil {
		logCtx.WithError(err).Error("Failed to delete image from storage")
		return fmt.Errorf("failed to delete image: %w", err)
	}

	logCtx.Info("Image cleanup task processed successfully")
	return nil
}

// ArchiveSweepHandler 清理超过保留期的归档条目，
// 并为其中带图片的条目追加图片回收任务。
type ArchiveSweepHandler struct {
	itemRepo      repository.ItemRepository
	enqueuer      *tasks.Enqueuer
	retentionDays int
}

// NewArchiveSweepHandler 创建 Handler 实例
func NewArchiveSweepHandler(itemRepo repository.ItemRepository, enqueuer *tasks.Enqueuer, retentionDays int) *ArchiveSweepHandler {
	return &ArchiveSweepHandler{itemRepo: itemRepo, enqueuer: enqueuer, retentionDays: retentionDays}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *ArchiveSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.ArchiveSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	retentionDays := payload.RetentionDays
	if retentionDays <= 0 {
		retentionDays = h.retentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	logCtx = logCtx.WithFields(logrus.Fields{"retention_days": retentionDays, "cutoff": cutoff})

	deleted, err := h.itemRepo.DeleteArchivedBefore(ctx, cutoff)
	if err != nil {
		logCtx.WithError(err).Error("Failed to sweep archived items")
		return fmt.Errorf("failed to sweep archived items: %w", err)
	}

	// 被清掉的条目如带图片，追加回收任务
	if h.enqueuer != nil {
		for _, item := range deleted {
			if item.ImageURL == "" {
				continue
			}
			if err := h.enqueuer.EnqueueImageCleanup(ctx, item.ImageURL); err != nil {
				logCtx.WithField("item_id", item.ID).WithError(err).Warn("Failed to enqueue image cleanup for swept item")
			}
		}
	}

	logCtx.WithField("deleted_count", len(deleted)).Info("Archive sweep task processed successfully")
	return nil
}
