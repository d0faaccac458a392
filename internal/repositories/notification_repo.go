package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/SocialHub/internal/models"
)

// NotificationRepository 通知仓储
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储实例
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// GetByID 根据ID获取通知
func (r *NotificationRepository) GetByID(id int64) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ExistsLike 是否已存在同 (recipient, actor, post) 的点赞通知
func (r *NotificationRepository) ExistsLike(recipientID, actorID, postID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND actor_id = ? AND type = ? AND post_id = ?",
			recipientID, actorID, models.NotifyLike, postID).
		Count(&count).Error
	return count > 0, err
}

// ExistsFollow 是否已存在同 (recipient, actor) 的关注通知
func (r *NotificationRepository) ExistsFollow(recipientID, actorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND actor_id = ? AND type = ?",
			recipientID, actorID, models.NotifyFollow).
		Count(&count).Error
	return count > 0, err
}

// ListByRecipient 按创建时间倒序分页获取用户通知
func (r *NotificationRepository) ListByRecipient(recipientID uint, limit, offset int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, total, err
}

// MarkRead 标记单条通知已读，仅当通知属于该用户时生效，返回受影响行数
func (r *NotificationRepository) MarkRead(id int64, recipientID uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": at,
		})
	return result.RowsAffected, result.Error
}

// MarkAllRead 批量标记用户全部未读通知
func (r *NotificationRepository) MarkAllRead(recipientID uint, at time.Time) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": at,
		}).Error
}

// CountUnread 用户未读通知数
func (r *NotificationRepository) CountUnread(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// PurgeOlderThan 硬删除早于 cutoff 的通知，返回删除行数
func (r *NotificationRepository) PurgeOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
