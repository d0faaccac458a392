package models

import "time"

// ChatMessage 聊天消息模型，同时承载私聊与群聊两种形态：
// 私聊消息 RecipientID 非空，群聊消息 GroupID 非空。
// 创建后内容不可变，只有软删除字段和私聊的 IsRead 会更新。
type ChatMessage struct {
	ID          int64  `gorm:"primaryKey" json:"id"` // snowflake
	SenderID    uint   `gorm:"not null;index" json:"sender_id"`
	RecipientID *uint  `gorm:"index" json:"recipient_id,omitempty"` // 私聊
	GroupID     *uint  `gorm:"index" json:"group_id,omitempty"`     // 群聊
	Content     string `gorm:"type:text;not null" json:"content"`

	// 群内顺序号，由 Redis Incr 生成，单发送者视角保序
	SequenceID int64 `gorm:"default:0" json:"sequence_id"`

	// 仅私聊使用
	IsRead bool `gorm:"default:false" json:"is_read"`

	// 软删除（内容下架），消息保留用于审计
	Deleted      bool       `gorm:"default:false;index" json:"deleted"`
	DeleteReason string     `json:"delete_reason,omitempty"`
	DeletedBy    *uint      `json:"deleted_by,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`

	SentAt time.Time `gorm:"index" json:"sent_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// IsDirect 是否私聊消息
func (m *ChatMessage) IsDirect() bool {
	return m.RecipientID != nil
}
