package feed

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Strategy 决定收到变更事件后如何更新本地快照
type Strategy int

const (
	// StrategyFullRefetch 每收到一个事件就重新拉取当前分区的完整列表。
	// 这是默认策略：代价是多一次请求，换来快照与服务端的强一致。
	StrategyFullRefetch Strategy = iota
	// StrategyIncremental 把事件直接应用到本地快照上，不回源
	StrategyIncremental
)

// Subscriber 建立房间订阅，*Client 是其默认实现
type Subscriber interface {
	Subscribe(ctx context.Context, roomID string) (Subscription, error)
}

// Feed 维护单个房间某一分区的条目快照。
// 同一时间只关注一个房间：Open 新房间会先关闭旧订阅。
// 分区（活跃/归档）是一个可变开关，切换分区不重建订阅，
// 事件送达时读取开关当前值决定对账到哪个分区。
type Feed struct {
	lister     Lister
	subscriber Subscriber
	strategy   Strategy
	onUpdate   func([]Item) // 每次快照变化后回调，传入副本

	mu       sync.Mutex
	roomID   string
	archived bool
	items    []Item
	sub      Subscription
	done     chan struct{}
}

// NewFeed 创建 Feed 实例。onUpdate 可以为 nil。
func NewFeed(lister Lister, subscriber Subscriber, strategy Strategy, onUpdate func([]Item)) *Feed {
	if lister == nil {
		panic("Lister cannot be nil for Feed")
	}
	if subscriber == nil {
		panic("Subscriber cannot be nil for Feed")
	}
	return &Feed{
		lister:     lister,
		subscriber: subscriber,
		strategy:   strategy,
		onUpdate:   onUpdate,
	}
}

// Open 切换到指定房间：关闭现有订阅，拉取初始快照，再建立新订阅。
func (f *Feed) Open(ctx context.Context, roomID string) error {
	f.closeSubscription()

	f.mu.Lock()
	f.roomID = roomID
	archived := f.archived
	f.mu.Unlock()

	items, err := f.lister.ListItems(ctx, roomID, archived)
	if err != nil {
		return err
	}

	sub, err := f.subscriber.Subscribe(ctx, roomID)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	f.mu.Lock()
	f.items = items
	f.sub = sub
	f.done = done
	f.mu.Unlock()
	f.notify()

	go f.consume(sub, roomID, done)
	return nil
}

// SetArchived 切换当前关注的分区并立即重新拉取快照。
// 订阅保持不动，后续事件按新的分区值对账。
func (f *Feed) SetArchived(ctx context.Context, archived bool) error {
	f.mu.Lock()
	f.archived = archived
	roomID := f.roomID
	f.mu.Unlock()

	if roomID == "" {
		return nil
	}
	return f.refetch(ctx, roomID)
}

// Items 返回当前快照的副本
func (f *Feed) Items() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

// Close 关闭当前订阅并清空快照
func (f *Feed) Close() {
	f.closeSubscription()
	f.mu.Lock()
	f.roomID = ""
	f.items = nil
	f.mu.Unlock()
}

// consume 消费订阅事件直到通道关闭或 Feed 切换房间
func (f *Feed) consume(sub Subscription, roomID string, done chan struct{}) {
	logCtx := logrus.WithField("room_id", roomID)
	for {
		select {
		case <-done:
			return
		case event, ok := <-sub.Events():
			if !ok {
				logCtx.Debug("Subscription event channel closed")
				return
			}
			f.apply(roomID, event)
		}
	}
}

// apply 按当前策略把单个事件对账到快照上
func (f *Feed) apply(roomID string, event ChangeEvent) {
	if f.strategy == StrategyFullRefetch {
		if err := f.refetch(context.Background(), roomID); err != nil {
			logrus.WithField("room_id", roomID).WithError(err).Warn("Failed to refetch items after change event")
		}
		return
	}
	f.applyIncremental(event)
}

// refetch 以分区开关的当前值重新拉取快照
func (f *Feed) refetch(ctx context.Context, roomID string) error {
	f.mu.Lock()
	archived := f.archived
	f.mu.Unlock()

	items, err := f.lister.ListItems(ctx, roomID, archived)
	if err != nil {
		return err
	}

	f.mu.Lock()
	// 拉取期间可能已经切换了房间
	if f.roomID != roomID {
		f.mu.Unlock()
		return nil
	}
	f.items = items
	f.mu.Unlock()
	f.notify()
	return nil
}

// applyIncremental 把事件直接应用到本地快照。
// insert 按 id 去重：初始拉取和事件送达可能交叠，同一条目不能出现两次。
func (f *Feed) applyIncremental(event ChangeEvent) {
	f.mu.Lock()

	item := event.Item
	inPartition := item.Archived == f.archived
	idx := -1
	for i := range f.items {
		if f.items[i].ID == item.ID {
			idx = i
			break
		}
	}

	switch event.Type {
	case EventInsert:
		if inPartition && idx < 0 {
			f.items = append([]Item{item}, f.items...)
		}
	case EventUpdate:
		switch {
		case !inPartition && idx >= 0:
			// 条目被移出当前分区（归档/取消归档）
			f.items = append(f.items[:idx], f.items[idx+1:]...)
		case inPartition && idx >= 0:
			f.items[idx] = item
		case inPartition && idx < 0:
			// 条目被移入当前分区
			f.items = append([]Item{item}, f.items...)
		}
	case EventDelete:
		if idx >= 0 {
			f.items = append(f.items[:idx], f.items[idx+1:]...)
		}
	default:
		f.mu.Unlock()
		logrus.WithField("event_type", event.Type).Warn("Ignoring unknown change event type")
		return
	}

	f.mu.Unlock()
	f.notify()
}

// closeSubscription 停止消费 goroutine 并关闭订阅连接
func (f *Feed) closeSubscription() {
	f.mu.Lock()
	sub, done := f.sub, f.done
	f.sub, f.done = nil, nil
	f.mu.Unlock()

	if done != nil {
		close(done)
	}
	if sub != nil {
		_ = sub.Close()
	}
}

// notify 用快照副本触发回调
func (f *Feed) notify() {
	if f.onUpdate == nil {
		return
	}
	f.onUpdate(f.Items())
}
