package ws

import (
	"encoding/json"
	"time"
)

// Event types - Client → Server
const (
	EventRoomJoin  = "room.join"
	EventRoomLeave = "room.leave"
	EventChatSend  = "chat.send"
	EventPing      = "ping"
)

// Event types - Server → Client
const (
	EventNotificationNew = "notification.new"
	EventMessageReceive  = "message.receive"
	EventMessageSent     = "message.sent"
	EventChatMessageNew  = "chat.message.new"
	EventRoomJoined      = "room.joined"
	EventRoomLeft        = "room.left"
	EventPong            = "pong"
	EventError           = "error"
)

// Event 统一的 WebSocket 消息信封
type Event struct {
	Type      string          `json:"type"`
	Channel   string          `json:"channel,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// RoomPayload 加入/离开房间请求
type RoomPayload struct {
	Room string `json:"room"`
}

// ChatSendPayload 通过 WebSocket 发送群消息
type ChatSendPayload struct {
	GroupID uint   `json:"group_id"`
	Content string `json:"content"`
}

// ErrorPayload 推送给客户端的错误
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent 构造服务端事件并序列化 payload
func NewEvent(eventType, channel string, payload any) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return &Event{
		Type:      eventType,
		Channel:   channel,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
