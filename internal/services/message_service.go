package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Gopher0727/SocialHub/internal/models"
	redispkg "github.com/Gopher0727/SocialHub/internal/pkg/redis"
	"github.com/Gopher0727/SocialHub/internal/repositories"
	"github.com/Gopher0727/SocialHub/pkg/logger"
	"github.com/Gopher0727/SocialHub/utils/snowflake"
)

// GroupMessagePublisher 群消息的 MQ 出口（Kafka）
// producer 不可用时传 nil，服务降级为直接广播
type GroupMessagePublisher interface {
	PublishGroupMessage(msg *models.ChatMessage) error
}

// MessageService 消息服务，承载私聊与群聊
type MessageService struct {
	messageRepo    *repositories.MessageRepository
	membershipRepo *repositories.MembershipRepository
	notifySvc      *NotificationService
	notifier       Notifier
	publisher      GroupMessagePublisher
	rdb            *redispkg.Client
	idgen          *snowflake.Node
	log            *logger.Logger
}

// NewMessageService 创建消息服务实例
func NewMessageService(
	messageRepo *repositories.MessageRepository,
	membershipRepo *repositories.MembershipRepository,
	notifySvc *NotificationService,
	notifier Notifier,
	publisher GroupMessagePublisher,
	rdb *redispkg.Client,
	idgen *snowflake.Node,
	log *logger.Logger,
) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageService{
		messageRepo:    messageRepo,
		membershipRepo: membershipRepo,
		notifySvc:      notifySvc,
		notifier:       notifier,
		publisher:      publisher,
		rdb:            rdb,
		idgen:          idgen,
		log:            log,
	}
}

// MessageDTO 消息数据传输对象
type MessageDTO struct {
	ID          int64  `json:"id"`
	SenderID    uint   `json:"sender_id"`
	RecipientID *uint  `json:"recipient_id,omitempty"`
	GroupID     *uint  `json:"group_id,omitempty"`
	Content     string `json:"content"`
	SequenceID  int64  `json:"sequence_id,omitempty"`
	IsRead      bool   `json:"is_read"`
	SentAt      string `json:"sent_at"`
}

func toMessageDTO(m *models.ChatMessage) MessageDTO {
	return MessageDTO{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		GroupID:     m.GroupID,
		Content:     m.Content,
		SequenceID:  m.SequenceID,
		IsRead:      m.IsRead,
		SentAt:      m.SentAt.Format("2006-01-02 15:04:05"),
	}
}

// PostDirectMessage 发送私聊消息
// 落库后生成 message 类型通知并推送实时事件，通知与推送都不影响发送结果
func (s *MessageService) PostDirectMessage(senderID, recipientID uint, content string) (*MessageDTO, error) {
	if len(content) == 0 || len(content) > 5000 {
		return nil, ErrInvalidInput
	}

	id, err := s.idgen.NextID()
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ID:          id,
		SenderID:    senderID,
		RecipientID: &recipientID,
		Content:     content,
		IsRead:      false,
		SentAt:      time.Now(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// 通知扇出失败只记录，不回滚消息
	if s.notifySvc != nil {
		if err := s.notifySvc.NotifyMessage(recipientID, senderID, message.ID); err != nil && s.log != nil {
			s.log.Warn("direct message notification failed",
				zap.Int64("message_id", message.ID), zap.Error(err))
		}
	}

	s.notifier.DirectMessageSent(message)

	dto := toMessageDTO(message)
	return &dto, nil
}

// PostGroupMessage 发送群聊消息
// 非活跃成员返回 ErrNotAMember；发送者不写回执，未读计算天然排除发送者
func (s *MessageService) PostGroupMessage(groupID, senderID uint, content string) (*MessageDTO, error) {
	if len(content) == 0 || len(content) > 5000 {
		return nil, ErrInvalidInput
	}

	if _, err := s.membershipRepo.GetActive(groupID, senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAMember
		}
		return nil, err
	}

	id, err := s.idgen.NextID()
	if err != nil {
		return nil, err
	}

	// 群内顺序号，Redis 不可用时退化为 0，仍按 sent_at 排序
	var seq int64
	if s.rdb != nil {
		seq, err = s.rdb.NextGroupSeq(context.Background(), groupID)
		if err != nil {
			if s.log != nil {
				s.log.Warn("group seq generation failed", zap.Uint("group_id", groupID), zap.Error(err))
			}
			seq = 0
		}
	}

	message := &models.ChatMessage{
		ID:         id,
		SenderID:   senderID,
		GroupID:    &groupID,
		Content:    content,
		SequenceID: seq,
		SentAt:     time.Now(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// Kafka 可用时经由消费者广播（多实例共享投递），否则直接走本机 Hub
	published := false
	if s.publisher != nil {
		if err := s.publisher.PublishGroupMessage(message); err != nil {
			if s.log != nil {
				s.log.Warn("publish group message failed, falling back to direct broadcast",
					zap.Int64("message_id", message.ID), zap.Error(err))
			}
		} else {
			published = true
		}
	}
	if !published {
		s.notifier.GroupMessageCreated(message)
	}

	dto := toMessageDTO(message)
	return &dto, nil
}

// SoftDelete 审核下架消息
// 消息保留可按ID审计查询，同时给消息作者生成 content_removed 通知
func (s *MessageService) SoftDelete(messageID int64, moderatorID uint, reason string) error {
	message, err := s.messageRepo.GetByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	rows, err := s.messageRepo.SoftDelete(messageID, moderatorID, reason, time.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		// 已经删除过，幂等成功
		return nil
	}

	if s.notifySvc != nil {
		if err := s.notifySvc.NotifyContentRemoved(message.SenderID, moderatorID, messageID, reason); err != nil && s.log != nil {
			s.log.Warn("content removed notification failed",
				zap.Int64("message_id", messageID), zap.Error(err))
		}
	}
	return nil
}

// GetMessage 按ID获取消息，包含已软删除的（审计查询）
func (s *MessageService) GetMessage(messageID int64) (*models.ChatMessage, error) {
	message, err := s.messageRepo.GetByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return message, nil
}

// ListConversation 两个用户间的私聊记录，按发送时间升序，不含已删除
func (s *MessageService) ListConversation(userA, userB uint) ([]MessageDTO, error) {
	messages, err := s.messageRepo.ListConversation(userA, userB)
	if err != nil {
		return nil, err
	}
	dtos := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, toMessageDTO(&messages[i]))
	}
	return dtos, nil
}

// ListGroupMessages 群聊记录，按发送时间升序，不含已删除
func (s *MessageService) ListGroupMessages(groupID uint) ([]MessageDTO, error) {
	messages, err := s.messageRepo.ListGroupMessages(groupID)
	if err != nil {
		return nil, err
	}
	dtos := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, toMessageDTO(&messages[i]))
	}
	return dtos, nil
}
