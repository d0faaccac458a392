package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/repositories"
	"github.com/Gopher0727/SocialHub/pkg/logger"
	"github.com/Gopher0727/SocialHub/utils/keylock"
	"github.com/Gopher0727/SocialHub/utils/snowflake"
)

// NotificationService 通知扇出服务
// 每类事件一个入口，统一遵循：自己触发不通知 -> 去重 -> 落库 -> 尽力推送。
// like/follow 的"查重 + 写入"用分段锁按去重键串行，避免并发下写出重复通知。
type NotificationService struct {
	notificationRepo *repositories.NotificationRepository
	idgen            *snowflake.Node
	dedupLock        *keylock.KeyLock
	notifier         Notifier
	log              *logger.Logger
}

// NewNotificationService 创建通知服务实例
func NewNotificationService(
	notificationRepo *repositories.NotificationRepository,
	idgen *snowflake.Node,
	notifier Notifier,
	log *logger.Logger,
) *NotificationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		idgen:            idgen,
		dedupLock:        keylock.New(128),
		notifier:         notifier,
		log:              log,
	}
}

// NotificationDTO 通知数据传输对象
type NotificationDTO struct {
	ID        int64  `json:"id"`
	ActorID   uint   `json:"actor_id"`
	Type      string `json:"type"`
	PostID    *uint  `json:"post_id,omitempty"`
	CommentID *uint  `json:"comment_id,omitempty"`
	StoryID   *uint  `json:"story_id,omitempty"`
	MessageID *int64 `json:"message_id,omitempty"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// NotifyLike 点赞通知，按 (recipient, actor, post) 去重
func (s *NotificationService) NotifyLike(recipientID, actorID, postID uint) error {
	if actorID == recipientID {
		return nil
	}

	key := fmt.Sprintf("like:%d:%d:%d", recipientID, actorID, postID)
	s.dedupLock.Lock(key)
	defer s.dedupLock.Unlock(key)

	exists, err := s.notificationRepo.ExistsLike(recipientID, actorID, postID)
	if err != nil {
		return err
	}
	if exists {
		// 重复点赞，幂等成功
		return nil
	}

	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotifyLike,
		PostID:      &postID,
		Message:     "liked your post",
	})
}

// NotifyComment 评论通知，不去重
func (s *NotificationService) NotifyComment(recipientID, actorID, postID, commentID uint) error {
	if actorID == recipientID {
		return nil
	}
	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotifyComment,
		PostID:      &postID,
		CommentID:   &commentID,
		Message:     "commented on your post",
	})
}

// NotifyFollow 关注通知，按 (recipient, actor) 去重
func (s *NotificationService) NotifyFollow(recipientID, actorID uint) error {
	if actorID == recipientID {
		return nil
	}

	key := fmt.Sprintf("follow:%d:%d", recipientID, actorID)
	s.dedupLock.Lock(key)
	defer s.dedupLock.Unlock(key)

	exists, err := s.notificationRepo.ExistsFollow(recipientID, actorID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotifyFollow,
		Message:     "started following you",
	})
}

// NotifyMessage 私聊消息通知，不去重
func (s *NotificationService) NotifyMessage(recipientID, actorID uint, messageID int64) error {
	if actorID == recipientID {
		return nil
	}
	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotifyMessage,
		MessageID:   &messageID,
		Message:     "sent you a message",
	})
}

// NotifyStoryView 动态浏览通知，不去重
func (s *NotificationService) NotifyStoryView(recipientID, actorID, storyID uint) error {
	if actorID == recipientID {
		return nil
	}
	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotifyStoryView,
		StoryID:     &storyID,
		Message:     "viewed your story",
	})
}

// NotifyMention 提及通知，不去重
func (s *NotificationService) NotifyMention(recipientID, actorID, postID uint, commentID *uint) error {
	if actorID == recipientID {
		return nil
	}
	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotifyMention,
		PostID:      &postID,
		CommentID:   commentID,
		Message:     "mentioned you",
	})
}

// NotifyContentRemoved 内容下架通知，携带审核原因，不去重
func (s *NotificationService) NotifyContentRemoved(recipientID, moderatorID uint, messageID int64, reason string) error {
	if moderatorID == recipientID {
		return nil
	}
	return s.create(&models.Notification{
		RecipientID: recipientID,
		ActorID:     moderatorID,
		Type:        models.NotifyContentRemoved,
		MessageID:   &messageID,
		Message:     "your message was removed: " + reason,
	})
}

// create 落库并尽力推送，推送永远不影响返回值
func (s *NotificationService) create(n *models.Notification) error {
	id, err := s.idgen.NextID()
	if err != nil {
		return err
	}
	n.ID = id
	n.CreatedAt = time.Now()

	if err := s.notificationRepo.Create(n); err != nil {
		return err
	}

	s.notifier.NotificationCreated(n)

	if s.log != nil {
		s.log.Debug("notification created",
			zap.Int64("id", n.ID),
			zap.Uint("recipient", n.RecipientID),
			zap.String("type", n.Type),
		)
	}
	return nil
}

// ListNotifications 分页获取用户通知
func (s *NotificationService) ListNotifications(userID uint, page, pageSize int) ([]NotificationDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	notifications, total, err := s.notificationRepo.ListByRecipient(userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, NotificationDTO{
			ID:        n.ID,
			ActorID:   n.ActorID,
			Type:      n.Type,
			PostID:    n.PostID,
			CommentID: n.CommentID,
			StoryID:   n.StoryID,
			MessageID: n.MessageID,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return dtos, total, nil
}

// MarkRead 标记已读，通知不属于该用户时静默忽略
func (s *NotificationService) MarkRead(userID uint, notificationID int64) error {
	_, err := s.notificationRepo.MarkRead(notificationID, userID, time.Now())
	return err
}

// MarkAllRead 标记全部已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.notificationRepo.MarkAllRead(userID, time.Now())
}

// UnreadCount 未读通知数
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// PurgeOlderThan 硬删除早于指定天数的通知，由外部调度器周期触发
func (s *NotificationService) PurgeOlderThan(days int) (int64, error) {
	if days <= 0 {
		return 0, ErrInvalidInput
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := s.notificationRepo.PurgeOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	if s.log != nil && deleted > 0 {
		s.log.Info("purged notifications", zap.Int64("count", deleted), zap.Int("days", days))
	}
	return deleted, nil
}

// GetNotification 按ID获取通知（审计用）
func (s *NotificationService) GetNotification(id int64) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}
