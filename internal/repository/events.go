package repository

import (
	"context"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// EventPublisher 把条目变更事件发布到对应房间的频道。
// 订阅端（Hub 及其 WebSocket 客户端）依赖"同一房间内按发布顺序送达"，
// 该保证由底层传输继承而来，这里不额外强制。
type EventPublisher interface {
	PublishChange(ctx context.Context, roomID string, event domain.ChangeEvent) error
}
