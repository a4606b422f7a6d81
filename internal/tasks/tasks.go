package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// 任务类型常量
const (
	// TypeImageCleanup 回收已删除条目的图片
	TypeImageCleanup = "image:cleanup"
	// TypeArchiveSweep 清理超过保留期的归档条目
	TypeArchiveSweep = "archive:sweep"
)

// ImageCleanupPayload 定义图片回收任务的载荷
type ImageCleanupPayload struct {
	ImageURL string `json:"image_url"`
}

// ArchiveSweepPayload 定义归档清理任务的载荷
type ArchiveSweepPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewImageCleanupTask 创建图片回收任务
func NewImageCleanupTask(imageURL string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageCleanupPayload{ImageURL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeImageCleanup, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// NewArchiveSweepTask 创建归档清理任务
func NewArchiveSweepTask(retentionDays int) (*asynq.Task, error) {
	payload, err := json.Marshal(ArchiveSweepPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal archive sweep payload: %w", err)
	}
	return asynq.NewTask(TypeArchiveSweep, payload, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}

// Enqueuer 包装 asynq.Client，供服务层入队后台任务
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer 创建 Enqueuer 实例
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	if client == nil {
		panic("asynq.Client cannot be nil for Enqueuer")
	}
	return &Enqueuer{client: client}
}

// EnqueueImageCleanup 入队一个图片回收任务
func (e *Enqueuer) EnqueueImageCleanup(ctx context.Context, imageURL string) error {
	task, err := NewImageCleanupTask(imageURL)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue image cleanup task: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"task_id":   info.ID,
		"queue":     info.Queue,
		"image_url": imageURL,
	}).Info("Image cleanup task enqueued")
	return nil
}
