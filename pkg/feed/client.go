package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subscription 是一个房间变更事件的订阅句柄。
// Events 返回的通道在订阅关闭或连接断开后会被关闭。
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}

// Lister 提供房间分区快照的全量拉取
type Lister interface {
	ListItems(ctx context.Context, roomID string, archived bool) ([]Item, error)
}

// Client 封装对服务端 HTTP 与 WebSocket 接口的访问
type Client struct {
	baseURL    string // 形如 http://host:port，不带尾斜杠
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// NewClient 创建 Client 实例。httpClient 为 nil 时使用默认客户端。
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		dialer:     websocket.DefaultDialer,
	}
}

// ListItems 拉取房间某一分区的全部条目
func (c *Client) ListItems(ctx context.Context, roomID string, archived bool) ([]Item, error) {
	endpoint := fmt.Sprintf("%s/api/rooms/%s/items?archived=%t", c.baseURL, url.PathEscape(roomID), archived)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list items failed with status %d", resp.StatusCode)
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode item list: %w", err)
	}
	return items, nil
}

// Subscribe 建立房间的 WebSocket 订阅
func (c *Client) Subscribe(ctx context.Context, roomID string) (Subscription, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/rooms/" + url.PathEscape(roomID)

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to subscribe to room (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	sub := &wsSubscription{
		conn:   conn,
		events: make(chan ChangeEvent, 64),
	}
	go sub.readLoop(roomID)
	return sub, nil
}

// wsSubscription 是基于 gorilla/websocket 的 Subscription 实现
type wsSubscription struct {
	conn   *websocket.Conn
	events chan ChangeEvent
}

func (s *wsSubscription) Events() <-chan ChangeEvent { return s.events }

func (s *wsSubscription) Close() error {
	return s.conn.Close()
}

// readLoop 持续读取连接上的事件并送入通道。
// 解析失败的消息跳过不中断订阅。
func (s *wsSubscription) readLoop(roomID string) {
	defer close(s.events)
	logCtx := logrus.WithField("room_id", roomID)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logCtx.WithError(err).Warn("Subscription connection closed unexpectedly")
			}
			return
		}

		var event ChangeEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logCtx.WithError(err).Warn("Skipping malformed change event")
			continue
		}
		s.events <- event
	}
}
