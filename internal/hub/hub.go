package hub

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	redisstate "github.com/zittiandbuoni/taskino/internal/infra/state/redis"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type   string  // "register", "unregister"
	RoomID string  // 房间 ID
	Client *Client // 关联的客户端
}

// Hub 维护每个房间的活跃 WebSocket 客户端集合，并把
// Redis 房间频道上的条目变更事件原样转发给这些客户端。
// 不论有多少客户端在看同一个房间，Hub 对该房间只保持
// 一个 Redis 订阅：首个客户端注册时建立，最后一个离开时关闭。
type Hub struct {
	// 内部通道，处理所有来自 Client 的注册/注销事件
	messageChan chan HubMessage

	// 客户端集合，按 RoomID 组织
	rooms   map[string]map[*Client]bool
	roomsMu sync.RWMutex

	// 每个房间的 Redis 订阅
	subs   map[string]*redis.PubSub
	subsMu sync.Mutex

	eventBus *redisstate.EventBus
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(eventBus *redisstate.EventBus) *Hub {
	if eventBus == nil {
		panic("EventBus cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		rooms:       make(map[string]map[*Client]bool),
		subs:        make(map[string]*redis.PubSub),
		eventBus:    eventBus,
	}
}

// Run 启动 Hub 的主事件处理循环。
// 它应该在一个单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		default:
			log.Warnf("Hub: received unknown message type: %s for room %s", msg.Type, msg.RoomID)
		}
	}
	log.Info("Hub is shutting down...")
}

// registerClient 把客户端加入房间集合；如该房间尚无订阅则建立一个。
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to register a nil client")
		return
	}
	roomID := client.RoomID()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "action": "registerClient"})

	h.roomsMu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
		logCtx.Info("Client list created for new room")
	}
	h.rooms[roomID][client] = true
	h.roomsMu.Unlock()
	logCtx.Info("Client registered to Hub")

	h.ensureSubscription(roomID)
}

// unregisterClient 把客户端移出房间集合；房间空了则关闭订阅。
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to unregister a nil client")
		return
	}
	roomID := client.RoomID()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "action": "unregisterClient"})

	roomEmpty := false
	h.roomsMu.Lock()
	if roomClients, roomExists := h.rooms[roomID]; roomExists {
		if _, clientExists := roomClients[client]; clientExists {
			delete(roomClients, client)

			// 关闭此客户端的 send 通道，这将导致其 WritePump 退出。
			// 检查通道状态，防止重复关闭 panic。
			select {
			case <-client.send:
				logCtx.Warn("Client send channel already closed or has data during unregister")
			default:
				close(client.send)
			}

			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
				roomEmpty = true
				logCtx.Info("Room empty, removed from Hub")
			}
		} else {
			logCtx.Warn("Client not found in room during unregister")
		}
	} else {
		logCtx.Warn("Room not found during client unregister")
	}
	h.roomsMu.Unlock()

	if roomEmpty {
		h.dropSubscription(roomID)
	}
	logCtx.Info("Client unregistered from Hub")
}

// ensureSubscription 为房间建立 Redis 订阅（如尚不存在），
// 并启动转发 goroutine：频道上收到的每条消息原样广播给房间内的客户端。
// 同一房间内的送达顺序即 Redis 的发布顺序。
func (h *Hub) ensureSubscription(roomID string) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	if _, ok := h.subs[roomID]; ok {
		return
	}

	pubsub := h.eventBus.SubscribeRoom(context.Background(), roomID)
	h.subs[roomID] = pubsub
	logrus.WithField("room_id", roomID).Info("Room subscription established")

	go func() {
		for msg := range pubsub.Channel() {
			h.broadcast(roomID, []byte(msg.Payload))
		}
		logrus.WithField("room_id", roomID).Debug("Room subscription channel closed")
	}()
}

// dropSubscription 关闭并移除房间的 Redis 订阅
func (h *Hub) dropSubscription(roomID string) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	if pubsub, ok := h.subs[roomID]; ok {
		if err := pubsub.Close(); err != nil {
			logrus.WithField("room_id", roomID).WithError(err).Warn("Failed to close room subscription")
		}
		delete(h.subs, roomID)
		logrus.WithField("room_id", roomID).Info("Room subscription closed")
	}
}

// broadcast 把消息发送给指定房间的所有客户端
func (h *Hub) broadcast(roomID string, message []byte) {
	h.roomsMu.RLock()
	roomClients, ok := h.rooms[roomID]
	// 拷贝接收者列表，避免长时间持有锁
	clientsToSend := make([]*Client, 0, len(roomClients))
	if ok {
		for client := range roomClients {
			clientsToSend = append(clientsToSend, client)
		}
	}
	h.roomsMu.RUnlock()

	if len(clientsToSend) == 0 {
		return
	}

	logrus.WithFields(logrus.Fields{
		"room_id":         roomID,
		"message_size":    len(message),
		"recipient_count": len(clientsToSend),
	}).Debug("Broadcasting message to clients")

	for _, client := range clientsToSend {
		// 非阻塞发送，避免单个慢客户端阻塞广播
		select {
		case client.send <- message:
		default:
			logrus.WithField("room_id", roomID).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 这是 Client 和 Handler 向 Hub 发送消息的安全方式。
// 返回 true 如果消息成功入队，false 如果队列已满。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"room_id":      msg.RoomID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// StopAllSubscriptions 关闭所有房间订阅，供应用优雅关闭时调用。
func (h *Hub) StopAllSubscriptions() {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for roomID, pubsub := range h.subs {
		if err := pubsub.Close(); err != nil {
			logrus.WithField("room_id", roomID).WithError(err).Warn("Failed to close room subscription")
		}
		delete(h.subs, roomID)
	}
	logrus.Info("All room subscriptions stopped")
}
