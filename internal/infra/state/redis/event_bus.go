// Package redisstate 实现基于 Redis Pub/Sub 的条目变更事件总线。
// 每个房间一个频道，频道名由房间 ID 确定性派生，
// 使多实例部署时任意实例上的写入都能到达所有订阅者。
package redisstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// EventBus 是 repository.EventPublisher 的 Redis 实现，
// 同时为 Hub 提供按房间订阅的能力。
type EventBus struct {
	client    *redis.Client
	keyPrefix string
}

// NewEventBus 创建 EventBus 实例
func NewEventBus(client *redis.Client, keyPrefix string) *EventBus {
	if client == nil {
		panic("redis client cannot be nil for EventBus")
	}
	if keyPrefix == "" {
		keyPrefix = "taskino:" // 默认前缀
	}
	return &EventBus{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// roomChannel 返回房间条目变更频道的名字
func (b *EventBus) roomChannel(roomID string) string {
	return fmt.Sprintf("%sroom:%s:items", b.keyPrefix, roomID)
}

// PublishChange 把一次条目变更发布到房间频道。
func (b *EventBus) PublishChange(ctx context.Context, roomID string, event domain.ChangeEvent) error {
	channel := b.roomChannel(roomID)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal change event (item %s): %w", event.Item.ID, err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"event_type":   event.Type,
			"room_id":      roomID,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: publish change event to channel %s: %w", channel, err)
	}
	return nil
}

// SubscribeRoom 订阅房间频道。调用方负责在不再需要时 Close 返回的 PubSub。
func (b *EventBus) SubscribeRoom(ctx context.Context, roomID string) *redis.PubSub {
	return b.client.Subscribe(ctx, b.roomChannel(roomID))
}
