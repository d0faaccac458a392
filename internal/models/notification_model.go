package models

import "time"

// 通知类型
const (
	NotifyLike           = "like"
	NotifyComment        = "comment"
	NotifyFollow         = "follow"
	NotifyMessage        = "message"
	NotifyStoryView      = "story_view"
	NotifyMention        = "mention"
	NotifyContentRemoved = "content_removed"
)

// Notification 通知模型
// like/follow 类型按 (recipient, actor, type[, post]) 去重，其余类型每个事件一条。
type Notification struct {
	ID          int64  `gorm:"primaryKey" json:"id"` // snowflake
	RecipientID uint   `gorm:"not null;index:idx_notify_recipient" json:"recipient_id"`
	ActorID     uint   `gorm:"not null" json:"actor_id"`
	Type        string `gorm:"not null;index:idx_notify_recipient" json:"type"`

	// 触发实体引用，按类型选填
	PostID    *uint  `json:"post_id,omitempty"`
	CommentID *uint  `json:"comment_id,omitempty"`
	StoryID   *uint  `json:"story_id,omitempty"`
	MessageID *int64 `json:"message_id,omitempty"`

	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`

	Recipient *User `gorm:"foreignKey:RecipientID" json:"-"`
	Actor     *User `gorm:"foreignKey:ActorID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
