package ws

import (
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/Gopher0727/SocialHub/pkg/logger"
)

// ChannelKind 频道类型：用户私有频道或聊天房间频道
type ChannelKind int

const (
	ChannelUser ChannelKind = iota
	ChannelRoom
)

// Channel 路由目标，两类频道共用同一个路由表键空间
type Channel struct {
	Kind ChannelKind
	ID   string
}

// UserChannel 用户私有通知频道，连接建立时自动加入
func UserChannel(userID uint) Channel {
	return Channel{Kind: ChannelUser, ID: strconv.FormatUint(uint64(userID), 10)}
}

// RoomChannel 命名房间频道，显式 join/leave
func RoomChannel(name string) Channel {
	return Channel{Kind: ChannelRoom, ID: name}
}

func (c Channel) String() string {
	if c.Kind == ChannelUser {
		return "user_" + c.ID
	}
	return "room_" + c.ID
}

// Hub 维护活跃连接与频道路由表
// 路由表是进程内的临时状态，连接断开或进程重启即丢失，不是事实来源。
// 每个进程一个实例，由启动代码注入，不走包级全局变量。
type Hub struct {
	mu sync.RWMutex

	// 注册的客户端
	clients map[*Client]bool

	// 频道 -> 订阅该频道的客户端集合
	channels map[Channel]map[*Client]bool

	// 客户端 -> 它加入的频道集合，断开时据此清理
	byClient map[*Client]map[Channel]bool

	log *logger.Logger
}

// NewHub 创建 Hub 实例
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		channels: make(map[Channel]map[*Client]bool),
		byClient: make(map[*Client]map[Channel]bool),
		log:      log,
	}
}

// Register 注册连接并自动加入其用户私有频道
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.byClient[client] = make(map[Channel]bool)
	h.joinLocked(client, UserChannel(client.userID))

	if h.log != nil {
		h.log.Debug("ws client registered",
			zap.Uint("user_id", client.userID),
			zap.String("conn_id", client.connID),
			zap.Int("total", len(h.clients)),
		)
	}
}

// Unregister 注销连接
// 从它加入过的所有频道移除（包括显式加入的房间频道），并关闭发送通道
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	for ch := range h.byClient[client] {
		h.leaveLocked(client, ch)
	}
	delete(h.byClient, client)
	close(client.send)

	if h.log != nil {
		h.log.Debug("ws client unregistered",
			zap.Uint("user_id", client.userID),
			zap.String("conn_id", client.connID),
			zap.Int("total", len(h.clients)),
		)
	}
}

// Join 将连接加入频道
func (h *Hub) Join(client *Client, ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	h.joinLocked(client, ch)
}

// Leave 将连接移出频道
func (h *Hub) Leave(client *Client, ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, ch)
}

func (h *Hub) joinLocked(client *Client, ch Channel) {
	if _, ok := h.channels[ch]; !ok {
		h.channels[ch] = make(map[*Client]bool)
	}
	h.channels[ch][client] = true
	if set, ok := h.byClient[client]; ok {
		set[ch] = true
	}
}

func (h *Hub) leaveLocked(client *Client, ch Channel) {
	if room, ok := h.channels[ch]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.channels, ch)
		}
	}
	if set, ok := h.byClient[client]; ok {
		delete(set, ch)
	}
}

// Push 推送事件到频道的所有订阅连接，fire-and-forget：
// 没有订阅者时静默丢弃；单个连接缓冲区满时丢弃该连接的这条事件并记录，
// 任何情况下都不阻塞、不返回错误。
func (h *Hub) Push(ch Channel, eventType string, payload any) {
	evt, err := NewEvent(eventType, ch.String(), payload)
	if err != nil {
		if h.log != nil {
			h.log.Warn("ws push marshal failed", zap.String("event", eventType), zap.Error(err))
		}
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		if h.log != nil {
			h.log.Warn("ws push marshal failed", zap.String("event", eventType), zap.Error(err))
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers, ok := h.channels[ch]
	if !ok {
		return
	}
	for client := range subscribers {
		select {
		case client.send <- data:
		default:
			// 发送缓冲区满：丢弃本条事件，连接清理交给读写泵的超时机制
			if h.log != nil {
				h.log.Warn("ws client send buffer full, event dropped",
					zap.Uint("user_id", client.userID),
					zap.String("event", eventType),
				)
			}
		}
	}
}

// Subscribers 频道当前订阅连接数
func (h *Hub) Subscribers(ch Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[ch])
}

// ClientCount 当前连接总数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
