package ws

import (
	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/services"
)

// HubNotifier 用 Hub 实现 services.Notifier
// 所有推送 fire-and-forget，失败由 Hub 内部吞掉并记录
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier 创建 HubNotifier
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotificationCreated 推送新通知到接收者私有频道
func (n *HubNotifier) NotificationCreated(notification *models.Notification) {
	n.hub.Push(UserChannel(notification.RecipientID), EventNotificationNew, notification)
}

// DirectMessageSent 收件人收 message.receive，发件人收 message.sent 投递回执
func (n *HubNotifier) DirectMessageSent(msg *models.ChatMessage) {
	if msg.RecipientID != nil {
		n.hub.Push(UserChannel(*msg.RecipientID), EventMessageReceive, msg)
	}
	n.hub.Push(UserChannel(msg.SenderID), EventMessageSent, msg)
}

// GroupMessageCreated 广播群消息到群房间频道
func (n *HubNotifier) GroupMessageCreated(msg *models.ChatMessage) {
	if msg.GroupID == nil {
		return
	}
	n.hub.Push(RoomChannel(services.GroupRoom(*msg.GroupID)), EventChatMessageNew, msg)
}
