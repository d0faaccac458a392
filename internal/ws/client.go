package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	redispkg "github.com/Gopher0727/SocialHub/internal/pkg/redis"
	"github.com/Gopher0727/SocialHub/internal/services"
	"github.com/Gopher0727/SocialHub/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Presence TTL, refreshed on every pong.
	presenceTTL = 2 * pongWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 代表一个 WebSocket 连接
// 生命周期：升级成功 -> Register（自动加入私有频道）-> 读写泵 -> Unregister（清理全部频道）
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
	connID string

	membershipSvc *services.MembershipService
	messageSvc    *services.MessageService
	rdb           *redispkg.Client
	log           *logger.Logger
}

// readPump 读取客户端上行事件
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		if c.rdb != nil {
			// 下线清理在线标记，失败无所谓，TTL 会兜底
			_ = c.rdb.RemoveUserOnline(context.Background(), c.userID)
		}
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.rdb != nil {
			// 收到 Pong 说明客户端还活着，异步刷新在线状态
			go func() {
				_ = c.rdb.SetUserOnline(context.Background(), c.userID, presenceTTL)
			}()
		}
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if c.log != nil {
					c.log.Warn("ws read error", zap.Uint("user_id", c.userID), zap.Error(err))
				}
			}
			break
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.sendError("bad_event", "malformed event")
			continue
		}
		c.handleEvent(&evt)
	}
}

// handleEvent 按类型分发上行事件
func (c *Client) handleEvent(evt *Event) {
	switch evt.Type {
	case EventRoomJoin:
		var p RoomPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil || p.Room == "" {
			c.sendError("bad_payload", "room is required")
			return
		}
		// 群房间只允许活跃成员订阅
		if groupID, ok := parseGroupRoom(p.Room); ok {
			isMember, err := c.membershipSvc.IsActiveMember(groupID, c.userID)
			if err != nil || !isMember {
				c.sendError("not_a_member", "not a member of this group")
				return
			}
		}
		c.hub.Join(c, RoomChannel(p.Room))
		c.sendAck(EventRoomJoined, p.Room)

	case EventRoomLeave:
		var p RoomPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil || p.Room == "" {
			c.sendError("bad_payload", "room is required")
			return
		}
		c.hub.Leave(c, RoomChannel(p.Room))
		c.sendAck(EventRoomLeft, p.Room)

	case EventChatSend:
		var p ChatSendPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil || p.GroupID == 0 {
			c.sendError("bad_payload", "group_id is required")
			return
		}
		if _, err := c.messageSvc.PostGroupMessage(p.GroupID, c.userID, p.Content); err != nil {
			c.sendError("send_failed", err.Error())
			return
		}

	case EventPing:
		c.sendAck(EventPong, "")

	default:
		c.sendError("unknown_event", evt.Type)
	}
}

// parseGroupRoom 识别 "group_{id}" 形式的群房间名
func parseGroupRoom(room string) (uint, bool) {
	const prefix = "group_"
	if !strings.HasPrefix(room, prefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(room[len(prefix):], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (c *Client) sendAck(eventType, room string) {
	evt, err := NewEvent(eventType, "", RoomPayload{Room: room})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventError, "", ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump 推送 Hub 下发的事件到连接
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// 顺带冲掉队列里积压的事件
			n := len(c.send)
			for range n {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs 处理 WebSocket 升级请求
func ServeWs(
	hub *Hub,
	membershipSvc *services.MembershipService,
	messageSvc *services.MessageService,
	rdb *redispkg.Client,
	log *logger.Logger,
	c *gin.Context,
) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if log != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
		}
		return
	}

	client := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 256),
		userID:        userID.(uint),
		connID:        uuid.New().String(),
		membershipSvc: membershipSvc,
		messageSvc:    messageSvc,
		rdb:           rdb,
		log:           log,
	}

	client.hub.Register(client)
	if rdb != nil {
		go func() {
			_ = rdb.SetUserOnline(context.Background(), client.userID, presenceTTL)
		}()
	}

	go client.writePump()
	go client.readPump()
}
