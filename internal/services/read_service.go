package services

import (
	"time"

	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/repositories"
)

// ReadService 已读追踪服务
// 私聊用消息上的 is_read 位，群聊用回执表；回执对 (message, user) 单调，
// 并发重复标记依赖唯一索引 + insert-or-ignore 保证不产生重复。
type ReadService struct {
	messageRepo *repositories.MessageRepository
	receiptRepo *repositories.ReceiptRepository
}

// NewReadService 创建已读追踪服务实例
func NewReadService(messageRepo *repositories.MessageRepository, receiptRepo *repositories.ReceiptRepository) *ReadService {
	return &ReadService{
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
	}
}

// MarkDirectRead 私聊消息标记已读
// 只有收件人能生效，其他人调用静默忽略（不是错误）
func (s *ReadService) MarkDirectRead(messageID int64, readerID uint) error {
	return s.messageRepo.MarkDirectRead(messageID, readerID)
}

// MarkGroupMessagesRead 将群内所有他人发送、尚无回执的未删除消息标为已读
// 幂等：重复调用不会新增回执
func (s *ReadService) MarkGroupMessagesRead(groupID, readerID uint) error {
	ids, err := s.messageRepo.ListUnreceiptedIDs(groupID, readerID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	now := time.Now()
	receipts := make([]models.ReadReceipt, 0, len(ids))
	for _, id := range ids {
		receipts = append(receipts, models.ReadReceipt{
			MessageID: id,
			UserID:    readerID,
			ReadAt:    now,
		})
	}
	// 并发下另一次标记可能已插入部分回执，唯一索引冲突按成功处理
	return s.receiptRepo.BatchCreate(receipts)
}

// UnreadCount 群内未读数 = 他人发送的未删除消息数 - 该用户回执数
func (s *ReadService) UnreadCount(groupID, userID uint) (int64, error) {
	return s.messageRepo.CountUnread(groupID, userID)
}

// ReceiptCount 某条消息的已读人数（"N 人已读"）
func (s *ReadService) ReceiptCount(messageID int64) (int64, error) {
	return s.receiptRepo.CountByMessage(messageID)
}

// HasRead 某用户是否已读某条消息
func (s *ReadService) HasRead(messageID int64, userID uint) (bool, error) {
	return s.receiptRepo.Exists(messageID, userID)
}
