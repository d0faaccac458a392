package services

import (
	"fmt"

	"github.com/Gopher0727/SocialHub/internal/models"
)

// Notifier 实时推送出口，由 ws 层实现（HubNotifier）。
// 所有方法都是 fire-and-forget：没有在线连接就静默丢弃，
// 推送失败永远不会影响已落库的业务结果。
type Notifier interface {
	// NotificationCreated 推送新通知到接收者的私有频道
	NotificationCreated(n *models.Notification)

	// DirectMessageSent 推送私聊消息：收件人收 message.receive，发件人收 message.sent 回执
	DirectMessageSent(msg *models.ChatMessage)

	// GroupMessageCreated 广播群聊消息到群房间频道
	GroupMessageCreated(msg *models.ChatMessage)
}

// GroupRoom 群聊房间频道名
func GroupRoom(groupID uint) string {
	return fmt.Sprintf("group_%d", groupID)
}

// NopNotifier 空实现，用于没有实时层的场景（测试、离线工具）
type NopNotifier struct{}

func (NopNotifier) NotificationCreated(*models.Notification) {}
func (NopNotifier) DirectMessageSent(*models.ChatMessage)    {}
func (NopNotifier) GroupMessageCreated(*models.ChatMessage)  {}
