package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/SocialHub/internal/models"
)

// MessageRepository 消息仓储
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓储实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建消息
func (r *MessageRepository) Create(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

// GetByID 根据ID获取消息（包含已软删除的，供审计查询）
func (r *MessageRepository) GetByID(id int64) (*models.ChatMessage, error) {
	var message models.ChatMessage
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListConversation 获取两个用户间的私聊消息，未删除，按发送时间升序
func (r *MessageRepository) ListConversation(userA, userB uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("deleted = ?", false).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("sent_at ASC").
		Find(&messages).Error
	return messages, err
}

// ListGroupMessages 获取群聊消息，未删除，按发送时间升序
func (r *MessageRepository) ListGroupMessages(groupID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("group_id = ? AND deleted = ?", groupID, false).
		Order("sent_at ASC").
		Find(&messages).Error
	return messages, err
}

// SoftDelete 软删除消息，返回受影响行数
// 消息本身保留，仅从活跃列表与未读计算中剔除
func (r *MessageRepository) SoftDelete(id int64, moderatorID uint, reason string, at time.Time) (int64, error) {
	result := r.db.Model(&models.ChatMessage{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":       true,
			"delete_reason": reason,
			"deleted_by":    moderatorID,
			"deleted_at":    at,
		})
	return result.RowsAffected, result.Error
}

// MarkDirectRead 私聊消息标记已读，仅当 reader 是收件人时生效
func (r *MessageRepository) MarkDirectRead(messageID int64, readerID uint) error {
	return r.db.Model(&models.ChatMessage{}).
		Where("id = ? AND recipient_id = ?", messageID, readerID).
		Update("is_read", true).Error
}

// ListUnreceiptedIDs 获取群内 reader 尚未回执的消息ID
// 排除软删除的消息与 reader 自己发送的消息
func (r *MessageRepository) ListUnreceiptedIDs(groupID, readerID uint) ([]int64, error) {
	sub := r.db.Model(&models.ReadReceipt{}).
		Select("message_id").
		Where("user_id = ?", readerID)

	var ids []int64
	err := r.db.Model(&models.ChatMessage{}).
		Where("group_id = ? AND sender_id <> ? AND deleted = ?", groupID, readerID, false).
		Where("id NOT IN (?)", sub).
		Pluck("id", &ids).Error
	return ids, err
}

// CountUnread 群内某用户的未读数 = 他人发送的未删除消息数 - 该用户的回执数
func (r *MessageRepository) CountUnread(groupID, userID uint) (int64, error) {
	sub := r.db.Model(&models.ReadReceipt{}).
		Select("message_id").
		Where("user_id = ?", userID)

	var count int64
	err := r.db.Model(&models.ChatMessage{}).
		Where("group_id = ? AND sender_id <> ? AND deleted = ?", groupID, userID, false).
		Where("id NOT IN (?)", sub).
		Count(&count).Error
	return count, err
}
